package tick

import (
	"context"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/fixkme/globaltick/clock"
	"github.com/fixkme/globaltick/errs"
	"github.com/fixkme/globaltick/event"
	g "github.com/fixkme/globaltick/framework/go"
	"github.com/fixkme/globaltick/mlog"
)

// EventTick 每轮循环广播一次的心跳事件名
const EventTick = "TICK"

// TickEvent 心跳事件数据
type TickEvent struct {
	ElapsedTime time.Duration // 距调度器启动的单调时间，不递减
	Seq         uint64        // 第几轮，从1开始
}

func (e TickEvent) Milliseconds() float64 {
	return float64(e.ElapsedTime) / float64(time.Millisecond)
}

// Scheduler 把所有定时器合并到一个心跳循环上
// 注册表、回调和广播都在同一个循环协程上串行执行，其他协程的调用通过任务队列进入
type Scheduler struct {
	id       string
	clock    clock.Source
	start    time.Time
	agent    *g.RoutineAgent
	driver   Driver
	timers   *registry
	bus      *event.Bus
	observer Observer
	onPanic  func(source string, r any)
	pinned   bool
	dropped  atomic.Uint64

	// 只在循环协程上访问
	lastElapsed time.Duration
	seq         uint64
}

// New 创建独立的调度器并立即开始循环
func New(opts Options) *Scheduler {
	return newScheduler(opts, false)
}

func newScheduler(opts Options, pinned bool) *Scheduler {
	opts = opts.withDefaults()
	s := &Scheduler{
		id:       uuid.NewString(),
		clock:    opts.Clock,
		timers:   newRegistry(),
		bus:      event.New(),
		observer: opts.Observer,
		onPanic:  opts.PanicHandler,
		pinned:   pinned,
	}
	if s.onPanic == nil {
		s.onPanic = s.logPanic
	}
	s.start = s.clock.Now()
	s.driver = newDriver(opts)
	s.agent = g.NewRoutineAgent(opts.TaskQueueSize)
	s.agent.Init(s.driver.C(), s.beat, s.driver.Stop)
	go s.agent.Run()
	mlog.Infof("scheduler %s started, driver=%s", s.id, s.driver.Name())
	return s
}

func (s *Scheduler) ID() string {
	return s.id
}

func (s *Scheduler) DriverName() string {
	return s.driver.Name()
}

// Bus 心跳事件所在的事件总线，也可以发布其他具名事件
func (s *Scheduler) Bus() *event.Bus {
	return s.bus
}

// Elapsed 当前距启动的时间
func (s *Scheduler) Elapsed() time.Duration {
	return clock.Since(s.clock, s.start)
}

// beat 一轮循环: 广播心跳 -> 触发到期定时器 -> 请求下一轮
func (s *Scheduler) beat(time.Time) {
	defer s.driver.Request()

	now := s.clock.Now()
	elapsed := now.Sub(s.start)
	if elapsed < s.lastElapsed {
		elapsed = s.lastElapsed
	}
	s.lastElapsed = elapsed
	s.seq++
	ev := TickEvent{ElapsedTime: elapsed, Seq: s.seq}

	s.bus.Publish(event.Event{Name: EventTick, Time: now, Data: ev})
	s.timers.fire(now, s.clock, s.invoke)

	s.observer.ObserveIteration(ev, clock.Since(s.clock, now), s.timers.len())
}

func (s *Scheduler) invoke(cb func(), repeat bool) {
	s.observer.ObserveFire(repeat)
	s.safely(PanicSourceTimer, cb)
}

// safely 隔离单个回调的panic，不影响其他定时器和后续心跳
func (s *Scheduler) safely(source string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.observer.ObservePanic(source)
			s.onPanic(source, r)
		}
	}()
	fn()
}

func (s *Scheduler) logPanic(source string, r any) {
	mlog.Errorf("scheduler %s %s callback panic: %v\n%s", s.id, source, r, debug.Stack())
}

func (s *Scheduler) register(cb func(), period time.Duration, repeat bool) Handle {
	h := InvalidHandle
	err := s.agent.SyncRunFunc(func() {
		h = s.timers.add(cb, period, repeat, s.clock.Now())
	})
	if err != nil {
		mlog.Warnf("scheduler %s register failed: %v", s.id, err)
	}
	return h
}

func (s *Scheduler) cancel(h Handle) {
	if h == InvalidHandle {
		return
	}
	_ = s.agent.SyncRunFunc(func() {
		s.timers.remove(h)
	})
}

// RegisterTimeout period之后触发一次cb，period不做校验
func (s *Scheduler) RegisterTimeout(cb func(), period time.Duration) Handle {
	return s.register(cb, period, false)
}

// RegisterInterval 每隔period触发一次cb，直到被取消
func (s *Scheduler) RegisterInterval(cb func(), period time.Duration) Handle {
	return s.register(cb, period, true)
}

// CancelTimeout 未知或已触发的句柄直接忽略
func (s *Scheduler) CancelTimeout(h Handle) {
	s.cancel(h)
}

func (s *Scheduler) CancelInterval(h Handle) {
	s.cancel(h)
}

// Len 已注册的定时器数量
func (s *Scheduler) Len() (n int) {
	_ = s.agent.SyncRunFunc(func() {
		n = s.timers.len()
	})
	return
}

// Pending 句柄是否仍在注册表中
func (s *Scheduler) Pending(h Handle) (ok bool) {
	_ = s.agent.SyncRunFunc(func() {
		ok = s.timers.contains(h)
	})
	return
}

// Sync 在两轮循环之间于循环协程上执行f并等待
func (s *Scheduler) Sync(f func()) error {
	return s.agent.SyncRunFunc(f)
}

// SyncContext 同Sync，但任务队列满时立即返回，ctx结束时不再等待
// 返回ctx.Err()时f可能仍会执行
func (s *Scheduler) SyncContext(ctx context.Context, f func()) error {
	return s.agent.CtxRunFunc(ctx, f)
}

// Subscribe 心跳处理函数，在循环协程上按订阅顺序同步调用
func (s *Scheduler) Subscribe(fn func(TickEvent)) (unsubscribe func()) {
	return s.bus.Subscribe(EventTick, func(e event.Event) {
		ev, ok := e.Data.(TickEvent)
		if !ok {
			return
		}
		s.safely(PanicSourceHeartbeat, func() { fn(ev) })
	})
}

// SubscribeChan 心跳投递到带缓冲的channel，消费慢时丢弃，不阻塞循环
func (s *Scheduler) SubscribeChan(buffer int) (<-chan TickEvent, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan TickEvent, buffer)
	// 只在循环协程上读写; 本轮广播的快照里可能还有这个订阅者
	var stopped bool
	unsub := s.bus.Subscribe(EventTick, func(e event.Event) {
		ev, ok := e.Data.(TickEvent)
		if !ok || stopped {
			return
		}
		select {
		case ch <- ev:
		default:
			s.dropped.Add(1)
		}
	})
	shut := func() {
		stopped = true
		close(ch)
	}
	var closed atomic.Bool
	return ch, func() {
		if !closed.CompareAndSwap(false, true) {
			return
		}
		unsub()
		// 在循环协程上关闭，保证没有正在进行的发送
		if err := s.agent.SyncRunFunc(shut); err != nil {
			<-s.agent.Done()
			shut()
		}
	}
}

// Dropped SubscribeChan因channel满丢弃的心跳数
func (s *Scheduler) Dropped() uint64 {
	return s.dropped.Load()
}

// Stop 停止独立创建的调度器并等待循环退出; 进程级调度器不能停止
func (s *Scheduler) Stop() error {
	if s.pinned {
		return errs.SchedulerPinned.Printf("scheduler %s", s.id)
	}
	s.agent.Close()
	if s.agent.InRoutine() {
		// 回调里停止，循环在本轮结束后退出
		return nil
	}
	<-s.agent.Done()
	mlog.Infof("scheduler %s stopped", s.id)
	return nil
}
