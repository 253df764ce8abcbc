package event

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/armon/go-radix"
)

// Event 具名事件，Name用.分层
type Event struct {
	Name string
	Time time.Time
	Data any
}

type Handler func(Event)

type subscriber struct {
	seq     uint64
	handler Handler
	ch      chan Event
	closed  bool
}

type topic struct {
	subs []*subscriber
}

// Bus 进程内事件总线
// handler在Publish中按订阅顺序同步调用; channel订阅者非阻塞投递，满了丢弃
// 订阅"tick"也会收到"tick.frame"，订阅""收到全部事件
type Bus struct {
	mu      sync.RWMutex
	topics  *radix.Tree
	seq     uint64
	dropped atomic.Uint64
}

func New() *Bus {
	return &Bus{topics: radix.New()}
}

// matches 订阅prefix是否收到name
func matches(prefix, name string) bool {
	if prefix == "" || prefix == name {
		return true
	}
	return strings.HasPrefix(name, prefix) && name[len(prefix)] == '.'
}

func (b *Bus) add(name string, s *subscriber) func() {
	b.mu.Lock()
	b.seq++
	s.seq = b.seq
	var tp *topic
	if v, ok := b.topics.Get(name); ok {
		tp = v.(*topic)
	} else {
		tp = &topic{}
		b.topics.Insert(name, tp)
	}
	tp.subs = append(tp.subs, s)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(name, s) })
	}
}

func (b *Bus) remove(name string, s *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.topics.Get(name)
	if !ok {
		return
	}
	tp := v.(*topic)
	tp.subs = slices.DeleteFunc(tp.subs, func(x *subscriber) bool { return x == s })
	if len(tp.subs) == 0 {
		b.topics.Delete(name)
	}
	if s.ch != nil && !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Subscribe 同步handler，返回的取消函数可重复调用
func (b *Bus) Subscribe(name string, h Handler) (unsubscribe func()) {
	return b.add(name, &subscriber{handler: h})
}

// SubscribeChan 带缓冲的channel，取消订阅时关闭
func (b *Bus) SubscribeChan(name string, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Event, buffer)
	return ch, b.add(name, &subscriber{ch: ch})
}

func (b *Bus) collect(name string) []*subscriber {
	var subs []*subscriber
	b.topics.WalkPath(name, func(key string, v any) bool {
		if matches(key, name) {
			subs = append(subs, v.(*topic).subs...)
		}
		return false
	})
	slices.SortFunc(subs, func(x, y *subscriber) int {
		switch {
		case x.seq < y.seq:
			return -1
		case x.seq > y.seq:
			return 1
		}
		return 0
	})
	return subs
}

// Publish 订阅者在调用时取快照，handler的panic由调用方处理
func (b *Bus) Publish(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	b.mu.RLock()
	subs := b.collect(e.Name)
	b.mu.RUnlock()

	for _, s := range subs {
		if s.handler != nil {
			s.handler(e)
			continue
		}
		b.deliver(s, e)
	}
}

func (b *Bus) deliver(s *subscriber, e Event) {
	// 持有读锁，remove不会在发送中途关闭ch
	b.mu.RLock()
	defer b.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- e:
	default:
		b.dropped.Add(1)
	}
}

// Dropped channel满丢弃的事件数
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	b.topics.Walk(func(_ string, v any) bool {
		n += len(v.(*topic).subs)
		return false
	})
	return n
}
