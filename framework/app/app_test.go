package app

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordModule struct {
	name   string
	mu     *sync.Mutex
	events *[]string
	quit   chan struct{}
	once   sync.Once
}

func newRecordModule(name string, mu *sync.Mutex, events *[]string) *recordModule {
	return &recordModule{name: name, mu: mu, events: events, quit: make(chan struct{})}
}

func (m *recordModule) record(ev string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.events = append(*m.events, m.name+"."+ev)
}

func (m *recordModule) OnInit() error { m.record("init"); return nil }
func (m *recordModule) Run()          { <-m.quit }
func (m *recordModule) Name() string  { return m.name }
func (m *recordModule) Destroy() {
	m.record("destroy")
	m.once.Do(func() { close(m.quit) })
}

func TestRunAndStop(t *testing.T) {
	var mu sync.Mutex
	var events []string
	a := newRecordModule("a", &mu, &events)
	b := newRecordModule("b", &mu, &events)

	app := New()
	done := make(chan struct{})
	go func() {
		app.Run(a, b)
		close(done)
	}()
	require.Eventually(t, func() bool { return app.GetState() == AppStateRun }, time.Second, time.Millisecond)
	app.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.Equal(t, int32(AppStateNone), app.GetState())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a.init", "b.init", "b.destroy", "a.destroy"}, events)
}
