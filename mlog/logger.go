package mlog

import (
	"context"
	"strings"
	"sync"
)

type Logger interface {
	Trace(v ...any)
	Debug(v ...any)
	Info(v ...any)
	Warn(v ...any)
	Error(v ...any)
	Fatal(v ...any)

	Tracef(format string, v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
	Fatalf(format string, v ...any)

	IsLevelEnabled(level Level) bool
}

var (
	mu     sync.RWMutex
	logger Logger
)

func SetLogger(l Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

func current() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// UseDefaultLogger 文件日志，ctx结束时刷完缓冲并关闭文件
func UseDefaultLogger(ctx context.Context, wg *sync.WaitGroup, path string, logName string, level Level, stdOut bool) error {
	l, err := newFileLogger(path, logName, level, stdOut)
	if err != nil {
		return err
	}
	l.Start(ctx, wg)
	SetLogger(l)
	return nil
}

func UseStdLogger(level Level) error {
	SetLogger(newStdoutLogger(level))
	return nil
}

type Level uint32

const (
	FatalLevel Level = iota
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
	TraceLevel
)

func (l Level) String() string {
	switch l {
	case FatalLevel:
		return "fatal"
	case ErrorLevel:
		return "error"
	case WarnLevel:
		return "warn"
	case InfoLevel:
		return "info"
	case DebugLevel:
		return "debug"
	case TraceLevel:
		return "trace"
	}
	return "unknown"
}

// ParseLevel 解析配置中的级别名，无法识别时返回def
func ParseLevel(s string, def Level) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fatal":
		return FatalLevel
	case "error":
		return ErrorLevel
	case "warn", "warning":
		return WarnLevel
	case "info":
		return InfoLevel
	case "debug":
		return DebugLevel
	case "trace":
		return TraceLevel
	}
	return def
}

func IsLevelEnabled(level Level) bool {
	l := current()
	return l != nil && l.IsLevelEnabled(level)
}

func Trace(a ...any) {
	if l := current(); l != nil {
		l.Trace(a...)
	}
}

func Tracef(format string, a ...any) {
	if l := current(); l != nil {
		l.Tracef(format, a...)
	}
}

func Debug(a ...any) {
	if l := current(); l != nil {
		l.Debug(a...)
	}
}

func Debugf(format string, a ...any) {
	if l := current(); l != nil {
		l.Debugf(format, a...)
	}
}

func Info(a ...any) {
	if l := current(); l != nil {
		l.Info(a...)
	}
}

func Infof(format string, a ...any) {
	if l := current(); l != nil {
		l.Infof(format, a...)
	}
}

func Warn(a ...any) {
	if l := current(); l != nil {
		l.Warn(a...)
	}
}

func Warnf(format string, a ...any) {
	if l := current(); l != nil {
		l.Warnf(format, a...)
	}
}

func Error(a ...any) {
	if l := current(); l != nil {
		l.Error(a...)
	}
}

func Errorf(format string, a ...any) {
	if l := current(); l != nil {
		l.Errorf(format, a...)
	}
}

func Fatal(a ...any) {
	if l := current(); l != nil {
		l.Fatal(a...)
	}
}

func Fatalf(format string, a ...any) {
	if l := current(); l != nil {
		l.Fatalf(format, a...)
	}
}
