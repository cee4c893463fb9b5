package time_measure

import (
	"fmt"
	"time"
)

// TimeMeasure 时间测量工具
type TimeMeasure struct {
	start time.Time
	delta time.Duration
	name  string
}

// NewTimeMeasure 工厂方法
func NewTimeMeasure(name string) *TimeMeasure {
	return &TimeMeasure{
		start: time.Now(),
		name:  name,
	}
}

// Stop 停止，返回耗时
func (object *TimeMeasure) Stop() time.Duration {
	object.delta = time.Since(object.start)
	return object.delta
}

// Reset 重置
func (object *TimeMeasure) Reset() {
	object.start = time.Now()
	object.delta = 0
}

// Elapsed 上次Stop测得的耗时
func (object *TimeMeasure) Elapsed() time.Duration {
	return object.delta
}

// 字符串描述
func (object *TimeMeasure) String() string {
	return fmt.Sprintf("%s use: %s", object.name, object.delta)
}
