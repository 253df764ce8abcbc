package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fixkme/globaltick/errs"
)

var Config *AppConfig

type AppConfig struct {
	NodeName    string `json:"node_name" yaml:"node_name"` // 节点名，用作指标的scheduler标签
	LogConfig   `json:",inline" yaml:",inline"`
	TickConfig  `json:",inline" yaml:",inline"`
	RedisConfig `json:",inline" yaml:",inline"`
	RelayConfig `json:",inline" yaml:",inline"`
	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr"` // 为空不开启/metrics
}

type LogConfig struct {
	LogPath   string `json:"log_path" yaml:"log_path"` // 为空输出到标准输出
	LogName   string `json:"log_name" yaml:"log_name"`
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogStdOut bool   `json:"log_std_out" yaml:"log_std_out"`
}

type TickConfig struct {
	FrameRate     int `json:"frame_rate" yaml:"frame_rate"` // 固定间隔模式每秒循环次数，<=0用默认60
	TaskQueueSize int `json:"task_queue_size" yaml:"task_queue_size"`
}

type RedisConfig struct {
	RedisMode       string `json:"redis_mode" yaml:"redis_mode"`
	RedisAddr       string `json:"redis_addr" yaml:"redis_addr"` // 多个地址用,隔开
	RedisMasterName string `json:"redis_master_name" yaml:"redis_master_name"`
	RedisPassword   string `json:"redis_password" yaml:"redis_password"`
	RedisDB         int    `json:"redis_db" yaml:"redis_db"`
}

type RelayConfig struct {
	RelayEnable  bool    `json:"relay_enable" yaml:"relay_enable"`
	RelayPrefix  string  `json:"relay_prefix" yaml:"relay_prefix"`
	RelayRate    float64 `json:"relay_rate" yaml:"relay_rate"` // 每秒最多发布次数，<=0不限
	RelayBurst   int     `json:"relay_burst" yaml:"relay_burst"`
	RelayTimeout int     `json:"relay_timeout" yaml:"relay_timeout"` // 毫秒
}

// Interval 帧率换算成固定间隔，帧率未配置时返回0
func (c *TickConfig) Interval() time.Duration {
	if c.FrameRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.FrameRate)
}

func (c *RelayConfig) Timeout() time.Duration {
	return time.Duration(c.RelayTimeout) * time.Millisecond
}

// LoadConfig 先读配置文件(.json/.yaml/.yml)，再用loadConfigFromEnv覆盖
func LoadConfig(configFile string, loadConfigFromEnv func(*AppConfig) error) error {
	conf := new(AppConfig)
	if len(configFile) != 0 {
		if err := loadConfigFromFile(configFile, conf); err != nil {
			return err
		}
	}
	if loadConfigFromEnv != nil {
		if err := loadConfigFromEnv(conf); err != nil {
			return errs.Config.Wrap(err)
		}
	}
	Config = conf
	return nil
}

func loadConfigFromFile(configFile string, conf *AppConfig) error {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return errs.Config.Wrap(err)
	}
	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, conf)
	case ".json":
		err = json.Unmarshal(data, conf)
	default:
		return errs.Config.Printf("unsupported config file %s", configFile)
	}
	if err != nil {
		return errs.Config.Wrap(err)
	}
	return nil
}

func (conf *AppConfig) JsonFormat() string {
	if conf == nil {
		return "{}"
	}
	data, err := json.MarshalIndent(conf, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}
