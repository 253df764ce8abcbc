package mlog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewWriterLogger(&buf, InfoLevel))
	defer SetLogger(nil)

	Debugf("hidden %d", 1)
	Infof("shown %d", 2)
	Warn("warned")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[info] shown 2")
	assert.Contains(t, out, "[warn] warned")
	assert.True(t, IsLevelEnabled(InfoLevel))
	assert.False(t, IsLevelEnabled(DebugLevel))
}

func TestNilLogger(t *testing.T) {
	SetLogger(nil)
	Infof("nobody listens")
	assert.False(t, IsLevelEnabled(FatalLevel))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG", InfoLevel))
	assert.Equal(t, WarnLevel, ParseLevel(" warning ", InfoLevel))
	assert.Equal(t, InfoLevel, ParseLevel("verbose", InfoLevel))
}

func TestFileLogger(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	require.NoError(t, UseDefaultLogger(ctx, wg, dir, "tick", DebugLevel, false))
	defer SetLogger(nil)

	Infof("scheduler %s started", "abc")
	Tracef("too verbose")
	cancel()
	wg.Wait()

	data, err := os.ReadFile(filepath.Join(dir, "tick.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[info] scheduler abc started")
	assert.NotContains(t, string(data), "too verbose")
}
