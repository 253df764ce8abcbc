package tick

import (
	"sync"
	"time"
)

var (
	builtin *Scheduler
	once    sync.Once
)

// Init 创建进程级调度器，只有第一次调用生效，之后返回同一个实例，不重置状态
func Init(opts Options) *Scheduler {
	once.Do(func() {
		builtin = newScheduler(opts, true)
	})
	return builtin
}

// GetScheduler 进程级调度器，未初始化时用默认配置创建
func GetScheduler() *Scheduler {
	return Init(DefaultOptions())
}

func RegisterTimeout(cb func(), period time.Duration) Handle {
	return GetScheduler().RegisterTimeout(cb, period)
}

func CancelTimeout(h Handle) {
	GetScheduler().CancelTimeout(h)
}

func RegisterInterval(cb func(), period time.Duration) Handle {
	return GetScheduler().RegisterInterval(cb, period)
}

func CancelInterval(h Handle) {
	GetScheduler().CancelInterval(h)
}

func Subscribe(fn func(TickEvent)) (unsubscribe func()) {
	return GetScheduler().Subscribe(fn)
}
