package auto_lock

import (
	"runtime"
	"time"

	"github.com/golang/glog"
	"github.com/intelligentfish/gospin/spin_lock"
)

// AutoLock 自动锁
type AutoLock struct {
	spin_lock.SpinLock
}

// WithLock 加锁执行回调
func (object *AutoLock) WithLock(callback func()) {
	object.Lock()
	defer object.Unlock()
	callback()
}

// WithDebugLock 加锁执行回调，输出调试日志
func (object *AutoLock) WithDebugLock(funcName string, callback func()) {
	glog.V(1).Info(funcName, " Lock")
	object.Lock()
	defer func() {
		object.Unlock()
		glog.V(1).Info(funcName, " UnLock")
	}()
	glog.V(1).Info(funcName, " Locked")
	callback()
}

// TryWithLock 尝试加锁一次，成功则执行回调
func (object *AutoLock) TryWithLock(callback func()) bool {
	if !object.TryLock() {
		return false
	}
	defer object.Unlock()
	callback()
	return true
}

// WithLockTimeout 在超时前加锁执行回调，超时返回false
func (object *AutoLock) WithLockTimeout(timeout time.Duration, callback func()) bool {
	deadline := time.Now().Add(timeout)
	for !object.TryLock() {
		if !time.Now().Before(deadline) {
			return false
		}
		runtime.Gosched()
	}
	defer object.Unlock()
	callback()
	return true
}
