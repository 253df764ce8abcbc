package relay

import (
	"strings"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/fixkme/globaltick/errs"
)

// Encode 心跳经过时间编码为google.protobuf.Duration
func Encode(elapsed time.Duration) ([]byte, error) {
	data, err := proto.Marshal(durationpb.New(elapsed))
	if err != nil {
		return nil, errs.Relay.Wrap(err)
	}
	return data, nil
}

func Decode(data []byte) (time.Duration, error) {
	d := new(durationpb.Duration)
	if err := proto.Unmarshal(data, d); err != nil {
		return 0, errs.Relay.Wrap(err)
	}
	if err := d.CheckValid(); err != nil {
		return 0, errs.Relay.Wrap(err)
	}
	return d.AsDuration(), nil
}

// ChannelName 发布频道 <prefix>:<source>
func ChannelName(prefix, source string) string {
	return prefix + ":" + source
}

// ChannelPattern 订阅某个前缀下所有来源的pattern
func ChannelPattern(prefix string) string {
	return prefix + ":*"
}

// SourceOf 从频道名取出来源id
func SourceOf(prefix, channel string) (string, bool) {
	source, ok := strings.CutPrefix(channel, prefix+":")
	if !ok || source == "" {
		return "", false
	}
	return source, true
}
