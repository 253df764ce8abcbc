package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixkme/globaltick/errs"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "tickd.json", `{
  "node_name": "n1",
  "log_level": "debug",
  "frame_rate": 30,
  "redis_addr": "127.0.0.1:6379",
  "relay_enable": true,
  "relay_rate": 10,
  "relay_timeout": 250,
  "metrics_addr": ":9100"
}`)
	require.NoError(t, LoadConfig(path, nil))
	assert.Equal(t, "n1", Config.NodeName)
	assert.Equal(t, "debug", Config.LogLevel)
	assert.Equal(t, 30, Config.FrameRate)
	assert.Equal(t, time.Second/30, Config.Interval())
	assert.Equal(t, "127.0.0.1:6379", Config.RedisAddr)
	assert.True(t, Config.RelayEnable)
	assert.Equal(t, 10.0, Config.RelayRate)
	assert.Equal(t, 250*time.Millisecond, Config.Timeout())
	assert.Equal(t, ":9100", Config.MetricsAddr)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "tickd.yaml", `
node_name: n2
log_std_out: true
frame_rate: 120
redis_mode: sentinel
redis_addr: "a:26379,b:26379"
redis_master_name: mymaster
relay_prefix: game
`)
	require.NoError(t, LoadConfig(path, nil))
	assert.Equal(t, "n2", Config.NodeName)
	assert.True(t, Config.LogStdOut)
	assert.Equal(t, 120, Config.FrameRate)
	assert.Equal(t, "sentinel", Config.RedisMode)
	assert.Equal(t, "mymaster", Config.RedisMasterName)
	assert.Equal(t, "game", Config.RelayPrefix)
}

func TestEnvOverrides(t *testing.T) {
	path := writeFile(t, "tickd.yml", "node_name: file\nframe_rate: 30\n")
	t.Setenv("TEST_NODE_NAME", "env")
	t.Setenv("TEST_RELAY_ENABLE", "true")
	t.Setenv("TEST_RELAY_RATE", "2.5")

	require.NoError(t, LoadConfig(path, EnvLoader("TEST_")))
	assert.Equal(t, "env", Config.NodeName)
	assert.Equal(t, 30, Config.FrameRate)
	assert.True(t, Config.RelayEnable)
	assert.Equal(t, 2.5, Config.RelayRate)
}

func TestEnvOnly(t *testing.T) {
	t.Setenv("TEST_FRAME_RATE", "20")
	require.NoError(t, LoadConfig("", EnvLoader("TEST_")))
	assert.Equal(t, 20, Config.FrameRate)
}

func TestLoadErrors(t *testing.T) {
	err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.True(t, errors.Is(err, errs.Config))

	err = LoadConfig(writeFile(t, "tickd.toml", "a = 1"), nil)
	assert.True(t, errors.Is(err, errs.Config))

	err = LoadConfig(writeFile(t, "bad.json", "{"), nil)
	assert.True(t, errors.Is(err, errs.Config))

	t.Setenv("TEST_FRAME_RATE", "fast")
	err = LoadConfig("", EnvLoader("TEST_"))
	assert.True(t, errors.Is(err, errs.Config))
}

func TestIntervalUnset(t *testing.T) {
	var c TickConfig
	assert.Equal(t, time.Duration(0), c.Interval())
}
