package clock

import (
	"sync"
	"time"
)

// Source 单调时钟源
// 返回值只用于相减求间隔，time.Now自带单调读数，不受系统时间调整影响
type Source interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

var system Source = systemClock{}

// System 系统单调时钟
func System() Source {
	return system
}

// Manual 手动推进的时钟，用于测试和模拟时间的宿主
type Manual struct {
	mu  sync.RWMutex
	now time.Time
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Advance 前进d，d<=0时不动，保证单调
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d > 0 {
		m.now = m.now.Add(d)
	}
	return m.now
}

// Set 设置到t，早于当前时间时忽略
func (m *Manual) Set(t time.Time) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.After(m.now) {
		m.now = t
	}
	return m.now
}

// Since 与time.Since相同，但使用指定时钟源
func Since(src Source, t time.Time) time.Duration {
	return src.Now().Sub(t)
}
