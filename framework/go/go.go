package g

import (
	"runtime/debug"
	"sync/atomic"

	"github.com/fixkme/globaltick/errs"
	"github.com/fixkme/globaltick/mlog"
)

var (
	ErrGoChanFull    = errs.QueueFull.Print("go chan is full")
	ErrRoutineClosed = errs.Closed.Print("routine agent is closed")
	ErrGoChanClosed  = errs.Closed.Print("go chan is closed")
)

type Go struct {
	ChanCb       chan func()
	panicHandler func(r any)
	closed       atomic.Bool
}

func NewGoChan(size int) *Go {
	if size < 1024 {
		size = 1024
	} else if size > 102400 {
		size = 102400
	}

	g := new(Go)
	g.ChanCb = make(chan func(), size)
	g.panicHandler = func(r any) {
		mlog.Errorf("go run panic: %v\n%s", r, debug.Stack())
	}
	return g
}

func (g *Go) SetPanicHandler(f func(r any)) {
	if f != nil {
		g.panicHandler = f
	}
}

func (g *Go) Close() {
	if g.closed.CompareAndSwap(false, true) {
		close(g.ChanCb)
	}
}

func (g *Go) IsClosed() bool {
	return g.closed.Load()
}

func (g *Go) wrap(f func(), done chan error) func() {
	return func() {
		defer close(done)
		if g.closed.Load() {
			done <- ErrGoChanClosed
			return
		}
		g.Exec(f)
	}
}

// SubmitWithResult 非阻塞提交，队列满时立即返回ErrGoChanFull
func (g *Go) SubmitWithResult(f func()) (errCh chan error) {
	errCh = make(chan error, 1)
	select {
	case g.ChanCb <- g.wrap(f, errCh):
	default:
		errCh <- ErrGoChanFull
		close(errCh)
	}
	return
}

// SubmitWait 阻塞提交，返回的channel在f执行完后关闭
func (g *Go) SubmitWait(f func()) (errCh chan error) {
	errCh = make(chan error, 1)
	g.ChanCb <- g.wrap(f, errCh)
	return
}

// Exec 执行cb，panic交给panicHandler，返回是否正常结束
func (g *Go) Exec(cb func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			g.panicHandler(r)
		}
	}()

	cb()
	return true
}
