package relay

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fixkme/globaltick/mlog"
)

// Subscriber redis.UniversalClient满足此接口
type Subscriber interface {
	PSubscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// BeatCB 收到某个来源的心跳
type BeatCB func(source string, elapsed time.Duration)

const retryDur = 5 * time.Second

// Listen 订阅prefix下所有来源的心跳，阻塞直到ctx结束
// 接收出错时短暂休眠后继续
func Listen(ctx context.Context, sub Subscriber, prefix string, cb BeatCB) error {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	pattern := ChannelPattern(prefix)
	pubsub := sub.PSubscribe(ctx, pattern)
	defer pubsub.Close()

	mlog.Infof("relay listening on %s", pattern)
	for {
		received, err := pubsub.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				mlog.Infof("relay listener on %s quit", pattern)
				return nil
			}
			mlog.Warnf("relay pubsub error %s, retry after %s", err, retryDur)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryDur):
			}
			continue
		}
		switch v := received.(type) {
		case *redis.Message:
			handleMessage(v, prefix, cb)
		case *redis.Subscription:
			mlog.Debugf("relay %s %s", v.Kind, v.Channel)
		case *redis.Pong:
		default:
			mlog.Debugf("relay pubsub recv %#v", v)
		}
	}
}

func handleMessage(msg *redis.Message, prefix string, cb BeatCB) bool {
	source, ok := SourceOf(prefix, msg.Channel)
	if !ok {
		mlog.Debugf("relay ignore channel %s", msg.Channel)
		return false
	}
	elapsed, err := Decode([]byte(msg.Payload))
	if err != nil {
		mlog.Warnf("relay bad payload on %s: %v", msg.Channel, err)
		return false
	}
	cb(source, elapsed)
	return true
}
