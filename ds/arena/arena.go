package arena

import (
	"fmt"
	"math"
)

// Handle 槽位下标(低32位) + 代数(高32位)
// 代数从1开始，所以0永远不是合法handle
type Handle uint64

const Null = -1

func makeHandle(index int, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(uint32(index)))
}

func (h Handle) Index() int {
	return int(uint32(h))
}

func (h Handle) Generation() uint32 {
	return uint32(h >> 32)
}

func (h Handle) String() string {
	return fmt.Sprintf("%08x-%08x", h.Generation(), uint32(h))
}

type slot[T any] struct {
	Data       T
	gen        uint32
	used       bool
	prev, next int // 已分配: 插入顺序链表; 空闲: next为空闲链表
}

// Arena 可增长的静态链表
// 已分配元素按插入顺序串成双向链表，删除O(1)
// 代数用尽的槽位直接退役，handle在进程生命周期内不会重复
type Arena[T any] struct {
	slots      []slot[T]
	free       int
	head, tail int
	len        int
	retired    int
	zero       T
}

func New[T any](capacity int) *Arena[T] {
	if capacity < 0 {
		capacity = 0
	}
	a := &Arena[T]{
		slots: make([]slot[T], 0, capacity),
		free:  Null,
		head:  Null,
		tail:  Null,
	}
	return a
}

func (a *Arena[T]) malloc() int {
	p := a.free
	if p != Null {
		a.free = a.slots[p].next
		return p
	}
	a.slots = append(a.slots, slot[T]{})
	return len(a.slots) - 1
}

// Insert 插入到队尾，返回新handle
func (a *Arena[T]) Insert(data T) Handle {
	p := a.malloc()
	s := &a.slots[p]
	s.gen++
	s.used = true
	s.Data = data
	s.prev = a.tail
	s.next = Null
	if a.tail != Null {
		a.slots[a.tail].next = p
	} else {
		a.head = p
	}
	a.tail = p
	a.len++
	return makeHandle(p, s.gen)
}

func (a *Arena[T]) lookup(h Handle) (int, bool) {
	p := h.Index()
	if h.Generation() == 0 || p >= len(a.slots) {
		return Null, false
	}
	s := &a.slots[p]
	if !s.used || s.gen != h.Generation() {
		return Null, false
	}
	return p, true
}

// Get 返回元素指针，handle失效时返回nil
// 指针在下一次Insert之前有效
func (a *Arena[T]) Get(h Handle) *T {
	p, ok := a.lookup(h)
	if !ok {
		return nil
	}
	return &a.slots[p].Data
}

func (a *Arena[T]) Contains(h Handle) bool {
	_, ok := a.lookup(h)
	return ok
}

// Remove 删除元素，handle未知或已删除时返回false
func (a *Arena[T]) Remove(h Handle) bool {
	p, ok := a.lookup(h)
	if !ok {
		return false
	}
	s := &a.slots[p]
	if s.prev != Null {
		a.slots[s.prev].next = s.next
	} else {
		a.head = s.next
	}
	if s.next != Null {
		a.slots[s.next].prev = s.prev
	} else {
		a.tail = s.prev
	}
	s.Data = a.zero
	s.used = false
	s.prev = Null
	a.len--
	if s.gen == math.MaxUint32 {
		// 代数用尽，退役
		s.next = Null
		a.retired++
		return true
	}
	s.next = a.free
	a.free = p
	return true
}

func (a *Arena[T]) Len() int {
	return a.len
}

// Handles 按插入顺序把handle追加到dst
func (a *Arena[T]) Handles(dst []Handle) []Handle {
	for p := a.head; p != Null; p = a.slots[p].next {
		dst = append(dst, makeHandle(p, a.slots[p].gen))
	}
	return dst
}
