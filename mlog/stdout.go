package mlog

import (
	"fmt"
	"io"
	"log"
	"os"
)

// levelLogger 按级别过滤后把一行文本交给output
type levelLogger struct {
	level  Level
	output func(line string)
	exit   func()
}

func (l *levelLogger) IsLevelEnabled(level Level) bool {
	return l.level >= level
}

func (l *levelLogger) log(level Level, args ...any) {
	if l.IsLevelEnabled(level) {
		l.output(levelTag(level) + fmt.Sprint(args...))
	}
}

func (l *levelLogger) logf(level Level, format string, args ...any) {
	if l.IsLevelEnabled(level) {
		l.output(levelTag(level) + fmt.Sprintf(format, args...))
	}
}

func (l *levelLogger) Trace(v ...any)                 { l.log(TraceLevel, v...) }
func (l *levelLogger) Tracef(format string, v ...any) { l.logf(TraceLevel, format, v...) }
func (l *levelLogger) Debug(v ...any)                 { l.log(DebugLevel, v...) }
func (l *levelLogger) Debugf(format string, v ...any) { l.logf(DebugLevel, format, v...) }
func (l *levelLogger) Info(v ...any)                  { l.log(InfoLevel, v...) }
func (l *levelLogger) Infof(format string, v ...any)  { l.logf(InfoLevel, format, v...) }
func (l *levelLogger) Warn(v ...any)                  { l.log(WarnLevel, v...) }
func (l *levelLogger) Warnf(format string, v ...any)  { l.logf(WarnLevel, format, v...) }
func (l *levelLogger) Error(v ...any)                 { l.log(ErrorLevel, v...) }
func (l *levelLogger) Errorf(format string, v ...any) { l.logf(ErrorLevel, format, v...) }

func (l *levelLogger) Fatal(v ...any) {
	l.log(FatalLevel, v...)
	l.exit()
}

func (l *levelLogger) Fatalf(format string, v ...any) {
	l.logf(FatalLevel, format, v...)
	l.exit()
}

func levelTag(level Level) string {
	return "[" + level.String() + "] "
}

func newStdoutLogger(level Level) Logger {
	return newWriterLogger(os.Stdout, level)
}

// NewWriterLogger 同步写入w，测试中用来捕获日志
func NewWriterLogger(w io.Writer, level Level) Logger {
	return newWriterLogger(w, level)
}

func newWriterLogger(w io.Writer, level Level) *levelLogger {
	ll := log.New(w, "", log.Ldate|log.Lmicroseconds)
	return &levelLogger{
		level:  level,
		output: func(line string) { ll.Println(line) },
		exit:   func() { os.Exit(1) },
	}
}
