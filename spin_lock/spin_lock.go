// Package spin_lock 自旋锁
//
// 不可重入，不记录持有者：同一协程重复Lock会一直自旋，未持有锁时Unlock会破坏互斥。
package spin_lock

import (
	"runtime"

	"go.uber.org/atomic"
)

// 锁状态
const (
	free = false // 空闲
	held = true  // 已持有
)

// SpinLock 自旋锁，零值可用
type SpinLock struct {
	state atomic.Bool // 锁标志
}

// New 工厂方法
func New() *SpinLock {
	return &SpinLock{}
}

// Lock 加锁
func (object *SpinLock) Lock() {
	for {
		if free == object.state.Load() &&
			object.state.CompareAndSwap(free, held) {
			return
		}
		runtime.Gosched()
	}
}

// TryLock 尝试加锁，只尝试一次
func (object *SpinLock) TryLock() bool {
	return free == object.state.Load() &&
		object.state.CompareAndSwap(free, held)
}

// Unlock 释放
func (object *SpinLock) Unlock() {
	object.state.Store(free)
}

// Wait 等待锁空闲，不加锁
func (object *SpinLock) Wait() {
	for held == object.state.Load() {
		runtime.Gosched()
	}
}

// IsLocked 是否已加锁
func (object *SpinLock) IsLocked() bool {
	return held == object.state.Load()
}

// Destroy 销毁，强制释放
func (object *SpinLock) Destroy() {
	object.Unlock()
}
