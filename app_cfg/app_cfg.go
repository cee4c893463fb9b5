package app_cfg

import (
	"io/ioutil"
	"os"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// 压测模式
const (
	ModeLock    = "lock"    // Lock/Unlock
	ModeTryLock = "trylock" // TryLock重试
	ModeWait    = "wait"    // 先Wait再Lock
	ModeMutex   = "mutex"   // sync.Mutex基准
)

// 默认值
const (
	DefaultGoroutines = 2
	DefaultIterations = 100000
)

// 全局变量
var (
	once     sync.Once // 执行一次
	instance *AppCfg   // 单实例
)

// StressCfg 压测配置
type StressCfg struct {
	Mode       string `json:"mode" yaml:"mode"`             // 模式
	Goroutines int    `json:"goroutines" yaml:"goroutines"` // 协程数
	Iterations int    `json:"iterations" yaml:"iterations"` // 每个协程的加锁次数
	MaxProcs   int    `json:"maxProcs" yaml:"maxProcs"`     // GOMAXPROCS，0表示不修改
}

// Total 期望的累加总数
func (object *StressCfg) Total() int {
	return object.Goroutines * object.Iterations
}

// Valid 校验
func (object *StressCfg) Valid() bool {
	return ValidMode(object.Mode) &&
		0 < object.Goroutines &&
		0 < object.Iterations &&
		0 <= object.MaxProcs
}

// ValidMode 模式是否合法
func ValidMode(mode string) bool {
	switch mode {
	case ModeLock, ModeTryLock, ModeWait, ModeMutex:
		return true
	}
	return false
}

// AppCfg 应用配置
type AppCfg struct {
	Debug     bool       `json:"debug" yaml:"debug"`
	StressCfg *StressCfg `json:"stressCfg" yaml:"stressCfg"`
}

// New 工厂方法，带默认值
func New() *AppCfg {
	return &AppCfg{
		StressCfg: &StressCfg{
			Mode:       ModeLock,
			Goroutines: DefaultGoroutines,
			Iterations: DefaultIterations,
		},
	}
}

// FromAppCfg 从文件加载配置，文件不存在时写入当前配置
func (object *AppCfg) FromAppCfg(path string) (err error) {
	var bytes []byte
	bytes, err = ioutil.ReadFile(path)
	if nil == err {
		if err = yaml.Unmarshal(bytes, object); nil != err {
			return errors.Wrapf(err, "parse %s", path)
		}
		if nil == object.StressCfg {
			object.StressCfg = New().StressCfg
		}
		return
	}
	if !os.IsNotExist(err) {
		return errors.Wrapf(err, "read %s", path)
	}
	if bytes, err = yaml.Marshal(object); nil != err {
		return errors.Wrap(err, "marshal config")
	}
	if err = ioutil.WriteFile(path, bytes, 0600); nil != err {
		return errors.Wrapf(err, "write %s", path)
	}
	return
}

// Valid 校验配置
func (object *AppCfg) Valid() bool {
	return nil != object.StressCfg && object.StressCfg.Valid()
}

// GetInstance 获取单实例
func GetInstance() *AppCfg {
	once.Do(func() {
		instance = New()
	})
	return instance
}
