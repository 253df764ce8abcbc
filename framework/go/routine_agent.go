package g

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fixkme/globaltick/util"
)

// RoutineAgent 单协程执行体
// 所有提交的任务和节拍回调都在Run所在的协程上串行执行
type RoutineAgent struct {
	*Go
	closeSig    chan struct{}
	exited      chan struct{}
	isClosed    bool
	mutex       sync.RWMutex
	gid         atomic.Int64
	beat        <-chan time.Time
	beatCb      BeatCb
	beforeClose func()
}

type BeatCb func(at time.Time)

func NewRoutineAgent(taskChSize int) *RoutineAgent {
	a := &RoutineAgent{
		Go:       NewGoChan(taskChSize),
		closeSig: make(chan struct{}),
		exited:   make(chan struct{}),
	}
	return a
}

// Init 必须在Run之前调用; beat可以为nil
func (a *RoutineAgent) Init(beat <-chan time.Time, beatCb BeatCb, beforeClose func()) {
	a.beat = beat
	a.beatCb = beatCb
	a.beforeClose = beforeClose
}

func (a *RoutineAgent) Run() {
	a.gid.Store(util.GoroutineID())
	defer a.onClose()

	for {
		select {
		case <-a.closeSig:
			return
		case cb := <-a.Go.ChanCb:
			a.Go.Exec(cb)
		case at, ok := <-a.beat:
			if !ok {
				// 节拍源关闭，只继续处理任务
				a.beat = nil
				continue
			}
			a.Go.Exec(func() { a.beatCb(at) })
		}
	}
}

// InRoutine 当前是否在Run所在的协程上
func (a *RoutineAgent) InRoutine() bool {
	gid := a.gid.Load()
	return gid != 0 && gid == util.GoroutineID()
}

func (a *RoutineAgent) onClose() {
	defer close(a.exited)
	if a.beforeClose != nil {
		a.Go.Exec(a.beforeClose)
	}
	a.Go.Close()
	for cb := range a.Go.ChanCb {
		a.Go.Exec(cb)
	}
	a.gid.Store(0)
}

func (a *RoutineAgent) Close() {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	if a.isClosed {
		return
	}

	a.isClosed = true
	close(a.closeSig)
}

func (a *RoutineAgent) IsClosed() bool {
	a.mutex.RLock()
	defer a.mutex.RUnlock()
	return a.isClosed
}

// Done Run退出后关闭
func (a *RoutineAgent) Done() <-chan struct{} {
	return a.exited
}

// SyncRunFunc 在agent协程上执行f并等待完成，已在agent协程上时直接执行
func (a *RoutineAgent) SyncRunFunc(f func()) (err error) {
	if a.InRoutine() {
		f()
		return nil
	}
	a.mutex.RLock()
	if a.isClosed {
		a.mutex.RUnlock()
		return ErrRoutineClosed
	}
	errCh := a.Go.SubmitWait(f)
	a.mutex.RUnlock()
	return <-errCh
}

// CtxRunFunc 非阻塞提交并等待完成，队列满返回ErrGoChanFull，ctx结束返回ctx.Err()
func (a *RoutineAgent) CtxRunFunc(ctx context.Context, f func()) (err error) {
	if a.InRoutine() {
		f()
		return nil
	}
	a.mutex.RLock()
	if a.isClosed {
		a.mutex.RUnlock()
		return ErrRoutineClosed
	}
	errCh := a.Go.SubmitWithResult(f)
	a.mutex.RUnlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
