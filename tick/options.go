package tick

import (
	"time"

	"github.com/fixkme/globaltick/clock"
)

// DefaultInterval 没有帧源时的节拍间隔，约60Hz
const DefaultInterval = time.Second / 60

const (
	PanicSourceTimer     = "timer"
	PanicSourceHeartbeat = "heartbeat"
)

// Observer 循环统计，在循环协程上调用
type Observer interface {
	ObserveIteration(ev TickEvent, cost time.Duration, timers int)
	ObserveFire(repeat bool)
	ObservePanic(source string)
}

type noopObserver struct{}

func (noopObserver) ObserveIteration(TickEvent, time.Duration, int) {}
func (noopObserver) ObserveFire(bool)                                {}
func (noopObserver) ObservePanic(string)                             {}

type Options struct {
	// Clock 单调时钟源，默认系统时钟
	Clock clock.Source
	// Frames 宿主提供的帧回调源，为nil时使用固定间隔定时器
	Frames FrameSource
	// Interval 固定间隔模式的节拍间隔
	Interval time.Duration
	Observer Observer
	// PanicHandler 回调panic后调用，source为PanicSourceTimer或PanicSourceHeartbeat
	PanicHandler  func(source string, r any)
	TaskQueueSize int
}

func DefaultOptions() Options {
	return Options{
		Clock:    clock.System(),
		Interval: DefaultInterval,
	}
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = clock.System()
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Observer == nil {
		o.Observer = noopObserver{}
	}
	return o
}
