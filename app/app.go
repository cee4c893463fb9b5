package app

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/golang/glog"
	"github.com/intelligentfish/gospin/auto_lock"
)

var (
	once     sync.Once // 执行一次
	instance *App      // 程序实例
)

// App 应用
type App struct {
	auto_lock.AutoLock
	PID           int
	isShutdown    bool
	signalCh      chan os.Signal
	shutdownHooks []ShutdownHook
}

// ShutdownHook 关闭钩子
type ShutdownHook func()

// newApp 工厂方法
func newApp() *App {
	return &App{
		PID:      os.Getpid(),
		signalCh: make(chan os.Signal, 1),
	}
}

// notifyShutdown 通知关闭
func (object *App) notifyShutdown() {
	var hooks []ShutdownHook
	object.WithLock(func() {
		object.isShutdown = true
		hooks = make([]ShutdownHook, len(object.shutdownHooks))
		copy(hooks, object.shutdownHooks)
	})
	for _, hook := range hooks {
		if nil != hook {
			hook()
		}
	}
}

// AddShutdownHook 添加关闭钩子
func (object *App) AddShutdownHook(hook ...ShutdownHook) *App {
	object.WithLock(func() {
		object.shutdownHooks = append(object.shutdownHooks, hook...)
	})
	return object
}

// Shutdown 关闭
func (object *App) Shutdown() *App {
	select {
	case object.signalCh <- syscall.SIGQUIT:
	default:
	}
	return object
}

// IsShutdown 是否已关闭
func (object *App) IsShutdown() bool {
	var ret bool
	object.WithLock(func() {
		ret = object.isShutdown
	})
	return ret
}

// WaitShutdown 等待关闭
func (object *App) WaitShutdown() {
	signal.Notify(object.signalCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	defer signal.Stop(object.signalCh)
	s := <-object.signalCh
	glog.Infof("signal: %v, shutdown", s)
	object.notifyShutdown()
	glog.Info("App shutdown")
}

// GetInstance 获取单例
func GetInstance() *App {
	once.Do(func() {
		instance = newApp()
	})
	return instance
}
