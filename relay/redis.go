package relay

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/fixkme/globaltick/errs"
	"github.com/fixkme/globaltick/framework/config"
)

const (
	RedisMode_Single   = "single"
	RedisMode_Sentinel = "sentinel"
	RedisMode_Cluster  = "cluster"
)

// NewClient 按配置的模式创建redis客户端并ping一次
func NewClient(ctx context.Context, conf *config.RedisConfig) (redis.UniversalClient, error) {
	if conf == nil {
		return nil, errs.Config.Print("redis config is nil")
	}
	var addrs []string
	for _, addr := range strings.Split(conf.RedisAddr, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	if len(addrs) == 0 {
		return nil, errs.Config.Printf("redis addr invalid (%s)", conf.RedisAddr)
	}

	var client redis.UniversalClient
	switch conf.RedisMode {
	case RedisMode_Cluster:
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:    addrs,
			Password: conf.RedisPassword,
		})
	case RedisMode_Sentinel:
		client = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:    conf.RedisMasterName,
			SentinelAddrs: addrs,
			Password:      conf.RedisPassword,
			DB:            conf.RedisDB,
		})
	case RedisMode_Single, "": // 默认single模式
		client = redis.NewClient(&redis.Options{
			Addr:     addrs[0],
			Password: conf.RedisPassword,
			DB:       conf.RedisDB,
		})
	default:
		return nil, errs.Config.Printf("unknown redis mode %q", conf.RedisMode)
	}

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errs.Relay.Wrap(err)
	}
	return client, nil
}
