package relay

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/xid"
	"golang.org/x/time/rate"

	"github.com/fixkme/globaltick/mlog"
	"github.com/fixkme/globaltick/tick"
)

// DefaultPrefix 默认频道前缀
const DefaultPrefix = "globaltick"

// Publisher redis.UniversalClient满足此接口
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type Options struct {
	Prefix string
	// Rate 每秒最多发布的心跳数，<=0不限制
	Rate  float64
	Burst int
	// Timeout 单次PUBLISH超时
	Timeout time.Duration
	// Buffer 心跳channel缓冲，满了丢弃
	Buffer int
}

func (o Options) withDefaults() Options {
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.Burst <= 0 {
		o.Burst = 1
	}
	if o.Timeout <= 0 {
		o.Timeout = time.Second
	}
	if o.Buffer <= 0 {
		o.Buffer = 64
	}
	return o
}

// Relay 把调度器心跳转发到redis频道，作为app模块运行
// 发布在独立协程上进行，不会阻塞调度循环
type Relay struct {
	name      string
	pub       Publisher
	scheduler *tick.Scheduler
	opts      Options
	source    string
	channel   string
	limiter   *rate.Limiter

	beats  <-chan tick.TickEvent
	unsub  func()
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once

	sent    atomic.Uint64
	limited atomic.Uint64
	failed  atomic.Uint64
}

func New(name string, pub Publisher, scheduler *tick.Scheduler, opts Options) *Relay {
	opts = opts.withDefaults()
	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}
	source := xid.New().String()
	ctx, cancel := context.WithCancel(context.Background())
	return &Relay{
		name:      name,
		pub:       pub,
		scheduler: scheduler,
		opts:      opts,
		source:    source,
		channel:   ChannelName(opts.Prefix, source),
		limiter:   rate.NewLimiter(limit, opts.Burst),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (r *Relay) Name() string {
	return r.name
}

// Source 本节点的来源id
func (r *Relay) Source() string {
	return r.source
}

func (r *Relay) Channel() string {
	return r.channel
}

func (r *Relay) OnInit() error {
	r.beats, r.unsub = r.scheduler.SubscribeChan(r.opts.Buffer)
	mlog.Infof("relay %s publishing heartbeat to %s", r.name, r.channel)
	return nil
}

func (r *Relay) Run() {
	for {
		select {
		case <-r.ctx.Done():
			return
		case ev, ok := <-r.beats:
			if !ok {
				return
			}
			r.publish(r.ctx, ev)
		}
	}
}

func (r *Relay) Destroy() {
	r.once.Do(func() {
		r.cancel()
		if r.unsub != nil {
			r.unsub()
		}
		mlog.Infof("relay %s stopped, sent=%d limited=%d failed=%d",
			r.name, r.sent.Load(), r.limited.Load(), r.failed.Load())
	})
}

func (r *Relay) publish(ctx context.Context, ev tick.TickEvent) bool {
	if !r.limiter.Allow() {
		r.limited.Add(1)
		return false
	}
	data, err := Encode(ev.ElapsedTime)
	if err != nil {
		r.failed.Add(1)
		mlog.Warnf("relay %s encode failed: %v", r.name, err)
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()
	if err = r.pub.Publish(ctx, r.channel, data).Err(); err != nil {
		r.failed.Add(1)
		mlog.Warnf("relay %s publish seq %d failed: %v", r.name, ev.Seq, err)
		return false
	}
	r.sent.Add(1)
	return true
}

// Stats 已发布、被限流和失败的心跳数
func (r *Relay) Stats() (sent, limited, failed uint64) {
	return r.sent.Load(), r.limited.Load(), r.failed.Load()
}
