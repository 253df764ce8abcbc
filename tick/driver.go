package tick

import (
	"context"
	"time"
)

const (
	DriverFrame = "frame"
	DriverDelay = "delay"
)

// Driver 请求下一次循环的策略
// 构造时即请求了第一次节拍，之后每轮结束调用一次Request，任何时刻最多一个未完成的请求
type Driver interface {
	Name() string
	C() <-chan time.Time
	Request()
	Stop()
}

// FrameSource 宿主的帧回调原语，每帧向channel发送一次
type FrameSource interface {
	Frames() <-chan time.Time
}

func newDriver(opts Options) Driver {
	if opts.Frames != nil {
		return frameDriver{src: opts.Frames}
	}
	return newDelayDriver(opts.Interval)
}

// frameDriver 节拍跟随宿主帧
type frameDriver struct {
	src FrameSource
}

func (d frameDriver) Name() string        { return DriverFrame }
func (d frameDriver) C() <-chan time.Time { return d.src.Frames() }
func (frameDriver) Request()              {}
func (frameDriver) Stop()                 {}

// delayDriver 没有帧源时的固定间隔定时器
type delayDriver struct {
	interval time.Duration
	timer    *time.Timer
}

func newDelayDriver(interval time.Duration) *delayDriver {
	return &delayDriver{
		interval: interval,
		timer:    time.NewTimer(interval),
	}
}

func (d *delayDriver) Name() string        { return DriverDelay }
func (d *delayDriver) C() <-chan time.Time { return d.timer.C }

func (d *delayDriver) Request() {
	d.timer.Reset(d.interval)
}

func (d *delayDriver) Stop() {
	d.timer.Stop()
}

// Frames 由宿主驱动的帧源，例如渲染循环每帧调用一次Signal
// channel无缓冲，Signal返回时调度器已经接收了这一帧
type Frames struct {
	ch chan time.Time
}

func NewFrames() *Frames {
	return &Frames{ch: make(chan time.Time)}
}

func (f *Frames) Frames() <-chan time.Time {
	return f.ch
}

// Signal 阻塞直到调度器接收这一帧
// 调度器Stop之后没有接收方，Signal会一直阻塞，此时用SignalContext或TrySignal
func (f *Frames) Signal() {
	f.ch <- time.Now()
}

// SignalContext ctx结束时放弃这一帧并返回ctx.Err()
func (f *Frames) SignalContext(ctx context.Context) error {
	select {
	case f.ch <- time.Now():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TrySignal 调度器忙时丢弃这一帧
func (f *Frames) TrySignal() bool {
	select {
	case f.ch <- time.Now():
		return true
	default:
		return false
	}
}
