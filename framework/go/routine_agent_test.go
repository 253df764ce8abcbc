package g

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fixkme/globaltick/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startAgent(t *testing.T, beat <-chan time.Time, cb BeatCb) *RoutineAgent {
	t.Helper()
	a := NewRoutineAgent(0)
	a.Init(beat, cb, nil)
	go a.Run()
	t.Cleanup(func() {
		a.Close()
		<-a.Done()
	})
	return a
}

func TestSyncRunFuncSerialized(t *testing.T) {
	a := startAgent(t, nil, nil)
	inRoutine := false
	require.NoError(t, a.SyncRunFunc(func() { inRoutine = a.InRoutine() }))
	assert.True(t, inRoutine)
	assert.False(t, a.InRoutine())
}

func TestSyncRunFuncReentrant(t *testing.T) {
	a := startAgent(t, nil, nil)
	inner := false
	err := a.SyncRunFunc(func() {
		// 已在agent协程上，直接执行，不会死锁
		require.NoError(t, a.SyncRunFunc(func() { inner = true }))
	})
	require.NoError(t, err)
	assert.True(t, inner)
}

func TestBeatCallback(t *testing.T) {
	beat := make(chan time.Time)
	got := make(chan time.Time, 1)
	startAgent(t, beat, func(at time.Time) { got <- at })

	now := time.Unix(10, 0)
	beat <- now
	select {
	case at := <-got:
		assert.Equal(t, now, at)
	case <-time.After(time.Second):
		t.Fatal("beat not delivered")
	}
}

func TestTaskPanicRecovered(t *testing.T) {
	a := startAgent(t, nil, nil)
	var recovered any
	a.SetPanicHandler(func(r any) { recovered = r })
	require.NoError(t, a.SyncRunFunc(func() { panic("boom") }))
	assert.Equal(t, "boom", recovered)

	ran := false
	require.NoError(t, a.SyncRunFunc(func() { ran = true }))
	assert.True(t, ran)
}

func TestClosedAgent(t *testing.T) {
	a := NewRoutineAgent(0)
	closed := false
	a.Init(nil, nil, func() { closed = true })
	go a.Run()
	a.Close()
	a.Close()
	<-a.Done()

	assert.True(t, closed)
	err := a.SyncRunFunc(func() {})
	assert.True(t, errors.Is(err, errs.Closed))
	assert.True(t, errors.Is(a.CtxRunFunc(context.Background(), func() {}), errs.Closed))
}

func TestCtxRunFunc(t *testing.T) {
	a := startAgent(t, nil, nil)

	n := 0
	require.NoError(t, a.CtxRunFunc(context.Background(), func() { n++ }))
	assert.Equal(t, 1, n)

	// 任务执行时间超过ctx
	started := make(chan struct{})
	release := make(chan struct{})
	go a.SyncRunFunc(func() {
		close(started)
		<-release
	})
	<-started
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := a.CtxRunFunc(ctx, func() { n++ })
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	close(release)

	// 超时的任务仍在队列中，随后执行
	require.NoError(t, a.SyncRunFunc(func() {}))
	assert.Equal(t, 2, n)

	// 在agent协程上直接执行
	require.NoError(t, a.SyncRunFunc(func() {
		assert.NoError(t, a.CtxRunFunc(context.Background(), func() { n++ }))
	}))
	assert.Equal(t, 3, n)
}
