package main

import (
	"context"
	"time"

	"github.com/fixkme/globaltick/mlog"
	"github.com/fixkme/globaltick/tick"
)

// statusModule 定期在日志里报告调度器状态
type statusModule struct {
	name   string
	s      *tick.Scheduler
	every  time.Duration
	handle tick.Handle
	last   tick.TickEvent
	unsub  func()
	quit   chan struct{}
}

func newStatusModule(name string, s *tick.Scheduler, every time.Duration) *statusModule {
	return &statusModule{name: name, s: s, every: every, quit: make(chan struct{})}
}

func (m *statusModule) Name() string {
	return m.name
}

func (m *statusModule) OnInit() error {
	// 两个回调都在循环协程上执行，last不需要加锁
	m.unsub = m.s.Subscribe(func(ev tick.TickEvent) { m.last = ev })
	m.handle = m.s.RegisterInterval(m.report, m.every)
	return nil
}

func (m *statusModule) report() {
	mlog.Infof("scheduler %s: seq=%d elapsed=%s timers=%d dropped=%d",
		m.s.ID(), m.last.Seq, m.last.ElapsedTime, m.s.Len(), m.s.Dropped())
}

func (m *statusModule) Run() {
	<-m.quit
}

// Destroy 循环卡住时最多等待一秒，不阻塞进程退出
func (m *statusModule) Destroy() {
	defer close(m.quit)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := m.s.SyncContext(ctx, func() {
		m.s.CancelInterval(m.handle)
		m.unsub()
	})
	if err != nil {
		mlog.Warnf("%s module cancel report timer: %v", m.name, err)
	}
}
