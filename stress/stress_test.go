package stress

import (
	"context"
	"testing"

	"github.com/intelligentfish/gospin/app_cfg"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newCfg(mode string, goroutines, iterations int) *app_cfg.StressCfg {
	return &app_cfg.StressCfg{
		Mode:       mode,
		Goroutines: goroutines,
		Iterations: iterations,
	}
}

func TestRunner_Modes(t *testing.T) {
	for _, mode := range []string{
		app_cfg.ModeLock,
		app_cfg.ModeTryLock,
		app_cfg.ModeWait,
		app_cfg.ModeMutex,
	} {
		mode := mode
		t.Run(mode, func(t *testing.T) {
			runner := NewRunner(newCfg(mode, 8, 5000))
			result, err := runner.Run(context.Background())
			require.NoError(t, err)
			require.Equal(t, int64(40000), result.Expected)
			require.Equal(t, result.Expected, result.Completed)
			require.Equal(t, result.Expected, result.Counter)
			require.False(t, result.Interrupted())

			require.Equal(t, float64(result.Completed), testutil.ToFloat64(runner.acquisitions))
			require.Equal(t, float64(result.TryLockFailures), testutil.ToFloat64(runner.tryLockFailures))
			require.Equal(t, float64(result.Waits), testutil.ToFloat64(runner.waits))
			require.Equal(t, 1, testutil.CollectAndCount(runner.runDuration))

			switch mode {
			case app_cfg.ModeWait:
				require.Equal(t, result.Expected, result.Waits)
			default:
				require.Zero(t, result.Waits)
			}
			if app_cfg.ModeTryLock != mode {
				require.Zero(t, result.TryLockFailures)
			}
		})
	}
}

func TestRunner_TwoGoroutines(t *testing.T) {
	cfg := newCfg(app_cfg.ModeLock, 2, 100000)
	cfg.MaxProcs = 2
	result, err := NewRunner(cfg).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(200000), result.Counter)
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := NewRunner(newCfg(app_cfg.ModeLock, 4, 10000)).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.True(t, result.Interrupted())
	require.Zero(t, result.Completed)
	require.Equal(t, result.Completed, result.Counter)
}

func TestRunner_InvalidCfg(t *testing.T) {
	_, err := NewRunner(newCfg("ticket", 2, 10)).Run(context.Background())
	require.ErrorIs(t, err, ErrInvalidMode)

	_, err = NewRunner(newCfg(app_cfg.ModeLock, 0, 10)).Run(context.Background())
	require.ErrorIs(t, err, ErrInvalidCfg)
}

func TestRunner_Registry(t *testing.T) {
	runner := NewRunner(newCfg(app_cfg.ModeLock, 2, 100))
	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	families, err := runner.Registry().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	require.ElementsMatch(t, []string{
		"gospin_acquisitions_total",
		"gospin_trylock_failures_total",
		"gospin_waits_total",
		"gospin_run_duration_seconds",
	}, names)
}

func TestRunner_Tallies(t *testing.T) {
	for _, goroutines := range []int{1, 3, 7} {
		cfg := newCfg(app_cfg.ModeWait, goroutines, 10)
		result, err := NewRunner(cfg).Run(context.Background())
		require.NoError(t, err)
		require.Equal(t, "wait", result.Mode)
		require.Equal(t, goroutines, result.Goroutines)
		require.Equal(t, int64(goroutines*10), result.Completed)
		require.Equal(t, int64(goroutines*10), result.Waits)
		require.Equal(t, result.Completed, result.Counter)
		require.True(t, result.Elapsed > 0)
	}
}
