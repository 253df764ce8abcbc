package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlersRunInSubscriptionOrder(t *testing.T) {
	b := New()
	var order []string
	b.Subscribe("TICK", func(Event) { order = append(order, "a") })
	b.Subscribe("", func(Event) { order = append(order, "all") })
	b.Subscribe("TICK", func(Event) { order = append(order, "b") })

	b.Publish(Event{Name: "TICK"})
	assert.Equal(t, []string{"a", "all", "b"}, order)
}

func TestDottedPrefix(t *testing.T) {
	b := New()
	var got []string
	b.Subscribe("tick", func(e Event) { got = append(got, e.Name) })

	b.Publish(Event{Name: "tick"})
	b.Publish(Event{Name: "tick.frame"})
	b.Publish(Event{Name: "ticker"})
	b.Publish(Event{Name: "other"})
	assert.Equal(t, []string{"tick", "tick.frame"}, got)
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	n := 0
	unsub := b.Subscribe("TICK", func(Event) { n++ })
	b.Publish(Event{Name: "TICK"})
	unsub()
	unsub()
	b.Publish(Event{Name: "TICK"})
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, b.Len())
}

func TestChannelSubscriberDropsWhenFull(t *testing.T) {
	b := New()
	ch, unsub := b.SubscribeChan("TICK", 2)
	for i := 0; i < 5; i++ {
		b.Publish(Event{Name: "TICK", Data: i})
	}
	assert.Equal(t, uint64(3), b.Dropped())

	first := <-ch
	assert.Equal(t, 0, first.Data)
	assert.False(t, first.Time.IsZero())

	unsub()
	<-ch
	_, ok := <-ch
	assert.False(t, ok)

	// 取消订阅后发布不能往已关闭的channel发送
	require.NotPanics(t, func() { b.Publish(Event{Name: "TICK"}) })
}

func TestSubscribeFromHandler(t *testing.T) {
	b := New()
	late := 0
	b.Subscribe("TICK", func(Event) {
		b.Subscribe("TICK", func(Event) { late++ })
	})
	b.Publish(Event{Name: "TICK"})
	assert.Equal(t, 0, late)
	b.Publish(Event{Name: "TICK"})
	assert.Equal(t, 1, late)
}
