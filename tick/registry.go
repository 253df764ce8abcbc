package tick

import (
	"time"

	"github.com/fixkme/globaltick/clock"
	"github.com/fixkme/globaltick/ds/arena"
)

// Handle 定时器句柄，进程生命周期内不重复
type Handle uint64

// InvalidHandle 不对应任何定时器
const InvalidHandle Handle = 0

func (h Handle) String() string {
	return arena.Handle(h).String()
}

type timerEntry struct {
	period   time.Duration // timeout或interval
	callback func()
	lastRun  time.Time // 注册时间或上次触发后的时间
	repeat   bool
}

// registry 只在循环协程上访问
type registry struct {
	entries  *arena.Arena[timerEntry]
	snapshot []arena.Handle
}

func newRegistry() *registry {
	return &registry{
		entries: arena.New[timerEntry](64),
	}
}

func (r *registry) add(cb func(), period time.Duration, repeat bool, now time.Time) Handle {
	h := r.entries.Insert(timerEntry{
		period:   period,
		callback: cb,
		lastRun:  now,
		repeat:   repeat,
	})
	return Handle(h)
}

func (r *registry) remove(h Handle) bool {
	return r.entries.Remove(arena.Handle(h))
}

func (r *registry) contains(h Handle) bool {
	return r.entries.Contains(arena.Handle(h))
}

func (r *registry) len() int {
	return r.entries.Len()
}

// fire 按注册顺序遍历本轮开始时的快照，触发到期的定时器
// now为本轮的时钟快照; 回调中注册的定时器下一轮才参与检查，被取消的跳过
// lastRun取回调返回后的实际时间，不补偿漂移
func (r *registry) fire(now time.Time, clk clock.Source, invoke func(cb func(), repeat bool)) (fired int) {
	r.snapshot = r.entries.Handles(r.snapshot[:0])
	for _, h := range r.snapshot {
		e := r.entries.Get(h)
		if e == nil {
			continue
		}
		if now.Sub(e.lastRun) < e.period {
			continue
		}
		invoke(e.callback, e.repeat)
		fired++

		// 回调可能插入新元素，指针需要重新获取
		e = r.entries.Get(h)
		if e == nil {
			// 回调里取消了自己
			continue
		}
		if !e.repeat {
			r.entries.Remove(h)
			continue
		}
		if after := clk.Now(); after.After(e.lastRun) {
			e.lastRun = after
		}
	}
	return
}
