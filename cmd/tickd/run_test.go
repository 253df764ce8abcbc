package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixkme/globaltick/clock"
	"github.com/fixkme/globaltick/framework/config"
	"github.com/fixkme/globaltick/tick"
)

func TestSchedulerOptions(t *testing.T) {
	conf := &config.AppConfig{}
	opts := schedulerOptions(conf, nil)
	assert.Equal(t, tick.DefaultInterval, opts.Interval)

	conf.FrameRate = 20
	conf.TaskQueueSize = 4096
	opts = schedulerOptions(conf, nil)
	assert.Equal(t, 50*time.Millisecond, opts.Interval)
	assert.Equal(t, 4096, opts.TaskQueueSize)
	assert.Nil(t, opts.Frames)
}

func TestRelayOptions(t *testing.T) {
	opts := relayOptions(&config.RelayConfig{RelayPrefix: "game", RelayRate: 5, RelayBurst: 2, RelayTimeout: 100})
	assert.Equal(t, "game", opts.Prefix)
	assert.Equal(t, 5.0, opts.Rate)
	assert.Equal(t, 2, opts.Burst)
	assert.Equal(t, 100*time.Millisecond, opts.Timeout)
}

func TestNodeName(t *testing.T) {
	assert.Equal(t, "tickd", nodeName(&config.AppConfig{}))
	assert.Equal(t, "n1", nodeName(&config.AppConfig{NodeName: "n1"}))
}

func TestStatusModule(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	frames := tick.NewFrames()
	s := tick.New(tick.Options{Clock: clk, Frames: frames})
	defer s.Stop()

	m := newStatusModule("status", s, 20*time.Millisecond)
	require.NoError(t, m.OnInit())
	assert.True(t, s.Pending(m.handle))

	done := make(chan struct{})
	go func() {
		m.Run()
		close(done)
	}()
	for i := 0; i < 3; i++ {
		clk.Advance(10 * time.Millisecond)
		frames.Signal()
		require.NoError(t, s.Sync(func() {}))
	}
	require.NoError(t, s.Sync(func() {
		assert.Equal(t, uint64(3), m.last.Seq)
	}))

	m.Destroy()
	<-done
	assert.False(t, s.Pending(m.handle))
	assert.Equal(t, 0, s.Len())
}

func TestExecuteUnknownConfig(t *testing.T) {
	err := Execute([]string{"tickd", "run", "--config", "missing.toml"})
	assert.Error(t, err)
}

func TestStatusModuleDestroyStalledLoop(t *testing.T) {
	s := tick.New(tick.Options{Frames: tick.NewFrames()})
	defer s.Stop()

	m := newStatusModule("status", s, time.Hour)
	require.NoError(t, m.OnInit())

	started := make(chan struct{})
	release := make(chan struct{})
	go s.Sync(func() {
		close(started)
		<-release
	})
	<-started

	done := make(chan struct{})
	go func() {
		m.Destroy()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("destroy blocked on a stalled loop")
	}
	<-m.quit

	// 超时的取消任务仍在队列中，循环恢复后执行
	close(release)
	require.Eventually(t, func() bool { return !s.Pending(m.handle) }, time.Second, time.Millisecond)
}
