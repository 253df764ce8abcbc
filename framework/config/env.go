package config

import (
	"os"
	"strconv"
)

// EnvLoader 用带前缀的环境变量覆盖配置，未设置的变量不影响文件中的值
// 变量名为 前缀 + 大写的字段名，如 GLOBALTICK_REDIS_ADDR
func EnvLoader(prefix string) func(*AppConfig) error {
	return func(conf *AppConfig) error {
		e := envReader{prefix: prefix}
		e.str("NODE_NAME", &conf.NodeName)
		e.str("LOG_PATH", &conf.LogPath)
		e.str("LOG_NAME", &conf.LogName)
		e.str("LOG_LEVEL", &conf.LogLevel)
		e.boolean("LOG_STD_OUT", &conf.LogStdOut)
		e.integer("FRAME_RATE", &conf.FrameRate)
		e.integer("TASK_QUEUE_SIZE", &conf.TaskQueueSize)
		e.str("REDIS_MODE", &conf.RedisMode)
		e.str("REDIS_ADDR", &conf.RedisAddr)
		e.str("REDIS_MASTER_NAME", &conf.RedisMasterName)
		e.str("REDIS_PASSWORD", &conf.RedisPassword)
		e.integer("REDIS_DB", &conf.RedisDB)
		e.boolean("RELAY_ENABLE", &conf.RelayEnable)
		e.str("RELAY_PREFIX", &conf.RelayPrefix)
		e.float("RELAY_RATE", &conf.RelayRate)
		e.integer("RELAY_BURST", &conf.RelayBurst)
		e.integer("RELAY_TIMEOUT", &conf.RelayTimeout)
		e.str("METRICS_ADDR", &conf.MetricsAddr)
		return e.err
	}
}

type envReader struct {
	prefix string
	err    error
}

func (e *envReader) lookup(name string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	return os.LookupEnv(e.prefix + name)
}

func (e *envReader) str(name string, dst *string) {
	if v, ok := e.lookup(name); ok {
		*dst = v
	}
}

func (e *envReader) integer(name string, dst *int) {
	if v, ok := e.lookup(name); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.err = err
			return
		}
		*dst = n
	}
}

func (e *envReader) float(name string, dst *float64) {
	if v, ok := e.lookup(name); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.err = err
			return
		}
		*dst = f
	}
}

func (e *envReader) boolean(name string, dst *bool) {
	if v, ok := e.lookup(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.err = err
			return
		}
		*dst = b
	}
}
