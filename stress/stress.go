// Package stress drives a lock from many goroutines and checks that no
// increment of a shared counter is lost.
package stress

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/intelligentfish/gospin/app_cfg"
	"github.com/intelligentfish/gospin/spin_lock"
	"github.com/intelligentfish/gospin/time_measure"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// 每隔多少次检查一次上下文
const ctxCheckInterval = 1 << 10

// 变量
var (
	ErrLostUpdate  = errors.New("lost update")           // 计数器与完成次数不一致
	ErrInvalidMode = errors.New("invalid lock mode")     // 非法模式
	ErrInvalidCfg  = errors.New("invalid stress config") // 非法配置
)

// Result 压测结果
type Result struct {
	Mode            string        // 模式
	Goroutines      int           // 协程数
	Expected        int64         // 期望累加次数
	Completed       int64         // 实际完成的临界区次数
	Counter         int64         // 计数器最终值
	TryLockFailures int64         // TryLock失败次数
	Waits           int64         // Wait次数
	Elapsed         time.Duration // 耗时
}

// Interrupted 是否被提前取消
func (object *Result) Interrupted() bool {
	return object.Completed < object.Expected
}

// 字符串描述
func (object *Result) String() string {
	return fmt.Sprintf("mode: %s, goroutines: %d, counter: %d/%d, trylock failures: %d, waits: %d, elapsed: %s",
		object.Mode,
		object.Goroutines,
		object.Counter,
		object.Expected,
		object.TryLockFailures,
		object.Waits,
		object.Elapsed)
}

// tally 单个协程的统计
type tally struct {
	completed       int64
	tryLockFailures int64
	waits           int64
}

// Runner 压测执行器
type Runner struct {
	cfg             *app_cfg.StressCfg
	registry        *prometheus.Registry
	acquisitions    prometheus.Counter
	tryLockFailures prometheus.Counter
	waits           prometheus.Counter
	runDuration     prometheus.Histogram
}

// NewRunner 工厂方法
func NewRunner(cfg *app_cfg.StressCfg) *Runner {
	object := &Runner{
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
		acquisitions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gospin_acquisitions_total",
			Help: "The total number of critical sections entered",
		}),
		tryLockFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gospin_trylock_failures_total",
			Help: "The total number of TryLock calls that did not obtain the lock",
		}),
		waits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gospin_waits_total",
			Help: "The total number of Wait calls made before locking",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gospin_run_duration_seconds",
			Help:    "Wall time of a whole stress run",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
	object.registry.MustRegister(object.acquisitions,
		object.tryLockFailures,
		object.waits,
		object.runDuration)
	return object
}

// Registry 指标注册表
func (object *Runner) Registry() *prometheus.Registry {
	return object.registry
}

// Run 执行压测
func (object *Runner) Run(ctx context.Context) (result *Result, err error) {
	if !app_cfg.ValidMode(object.cfg.Mode) {
		return nil, errors.Wrapf(ErrInvalidMode, "%q", object.cfg.Mode)
	}
	if !object.cfg.Valid() {
		return nil, errors.Wrapf(ErrInvalidCfg, "%+v", *object.cfg)
	}
	if 0 < object.cfg.MaxProcs {
		defer runtime.GOMAXPROCS(runtime.GOMAXPROCS(object.cfg.MaxProcs))
	}

	var (
		counter int64
		spin    spin_lock.SpinLock
		mu      sync.Mutex
		wg      sync.WaitGroup
	)
	result = &Result{
		Mode:       object.cfg.Mode,
		Goroutines: object.cfg.Goroutines,
		Expected:   int64(object.cfg.Total()),
	}
	work := func(t *tally) {
		for i := 0; i < object.cfg.Iterations; i++ {
			if 0 == i%ctxCheckInterval && nil != ctx.Err() {
				return
			}
			switch object.cfg.Mode {
			case app_cfg.ModeLock:
				spin.Lock()
				counter++
				spin.Unlock()
			case app_cfg.ModeTryLock:
				for !spin.TryLock() {
					t.tryLockFailures++
					runtime.Gosched()
				}
				counter++
				spin.Unlock()
			case app_cfg.ModeWait:
				spin.Wait()
				t.waits++
				spin.Lock()
				counter++
				spin.Unlock()
			case app_cfg.ModeMutex:
				mu.Lock()
				counter++
				mu.Unlock()
			}
			t.completed++
		}
	}

	glog.Infof("stress begin, mode: %s, goroutines: %d, iterations: %d",
		object.cfg.Mode, object.cfg.Goroutines, object.cfg.Iterations)
	start := make(chan struct{})
	tallies := make([]tally, object.cfg.Goroutines)
	wg.Add(object.cfg.Goroutines)
	for i := range tallies {
		go func(t *tally) {
			defer wg.Done()
			<-start
			work(t)
		}(&tallies[i])
	}
	tm := time_measure.NewTimeMeasure("stress " + object.cfg.Mode)
	close(start)
	wg.Wait()
	result.Elapsed = tm.Stop()
	result.Counter = counter
	for _, t := range tallies {
		result.Completed += t.completed
		result.TryLockFailures += t.tryLockFailures
		result.Waits += t.waits
	}

	object.acquisitions.Add(float64(result.Completed))
	object.tryLockFailures.Add(float64(result.TryLockFailures))
	object.waits.Add(float64(result.Waits))
	object.runDuration.Observe(result.Elapsed.Seconds())
	glog.Infof("stress end, %s, %s", tm, result)

	if result.Counter != result.Completed {
		glog.Errorf("lost update: counter %d, completed %d", result.Counter, result.Completed)
		return result, errors.Wrapf(ErrLostUpdate, "counter %d, completed %d", result.Counter, result.Completed)
	}
	if nil != ctx.Err() && result.Interrupted() {
		return result, errors.Wrap(ctx.Err(), "stress interrupted")
	}
	return result, nil
}
