package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/intelligentfish/gospin/app"
	"github.com/intelligentfish/gospin/app_cfg"
	"github.com/intelligentfish/gospin/stress"
)

// 命令行参数
var (
	cfgPath    = flag.String("config", "gospin.yaml", "config file, written with defaults when missing")
	mode       = flag.String("mode", "", "lock|trylock|wait|mutex, overrides config")
	goroutines = flag.Int("goroutines", 0, "number of contending goroutines, overrides config")
	iterations = flag.Int("iterations", 0, "lock cycles per goroutine, overrides config")
)

// loadCfg 加载配置并应用命令行覆盖
func loadCfg(cfg *app_cfg.AppCfg) error {
	if err := cfg.FromAppCfg(*cfgPath); nil != err {
		return err
	}
	if 0 < len(*mode) {
		cfg.StressCfg.Mode = *mode
	}
	if 0 < *goroutines {
		cfg.StressCfg.Goroutines = *goroutines
	}
	if 0 < *iterations {
		cfg.StressCfg.Iterations = *iterations
	}
	if cfg.Debug {
		flag.Set("v", "1")
	}
	return nil
}

// mainImpl main实现
func mainImpl() int {
	cfg := app_cfg.GetInstance()
	err := loadCfg(cfg)
	if nil != err {
		glog.Error(err)
		return 1
	}
	if !cfg.Valid() {
		glog.Errorf("invalid config: %+v", *cfg.StressCfg)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.GetInstance().AddShutdownHook(func() { cancel() })

	var result *stress.Result
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err = stress.NewRunner(cfg.StressCfg).Run(ctx)
		app.GetInstance().Shutdown()
	}()
	app.GetInstance().WaitShutdown()
	<-done

	if nil != result {
		fmt.Println(result)
	}
	if nil != err {
		glog.Error(err)
		return 1
	}
	return 0
}

// 入口
func main() {
	flag.Set("alsologtostderr", "true")
	flag.Parse()
	glog.Infof("app id: %d", app.GetInstance().PID)
	code := mainImpl()
	glog.Flush()
	os.Exit(code)
}
