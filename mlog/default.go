package mlog

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	maxFileSize     = int64(100 * 1024 * 1024) // 100 MB
	rotateCheckSpan = 30 * time.Second
)

// fileLogger 异步写文件，按大小切割
type fileLogger struct {
	levelLogger
	file   *os.File
	ll     *log.Logger
	buff   chan string
	stdOut bool
}

func newFileLogger(logpath, logName string, level Level, stdOut bool) (*fileLogger, error) {
	// 默认使用当前路径
	if len(logpath) == 0 {
		logpath = "."
	}
	logfile, err := openFile(filepath.Join(logpath, genLogName(logName)))
	if err != nil {
		return nil, err
	}
	fl := &fileLogger{
		file:   logfile,
		ll:     log.New(logfile, "", log.Ldate|log.Lmicroseconds),
		buff:   make(chan string, 0x10000),
		stdOut: stdOut,
	}
	fl.levelLogger = levelLogger{
		level:  level,
		output: func(line string) { fl.buff <- line },
		exit: func() {
			time.Sleep(time.Second)
			os.Exit(1)
		},
	}
	return fl, nil
}

func (fl *fileLogger) write(line string) {
	if fl.stdOut {
		log.Println(line)
	}
	fl.ll.Println(line)
}

func (fl *fileLogger) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("mlog recover error %v\n", r)
			}
			fl.file.Close()
			wg.Done()
		}()

		timer := time.NewTimer(rotateCheckSpan)
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				for {
					select {
					case line := <-fl.buff:
						fl.write(line)
					default:
						return
					}
				}
			case line := <-fl.buff:
				fl.write(line)
			case <-timer.C:
				fl.rotate()
				timer.Reset(rotateCheckSpan)
			}
		}
	}()
}

func (fl *fileLogger) rotate() {
	info, err := fl.file.Stat()
	if err != nil {
		log.Println("mlog stat error", err)
		return
	}
	if info.Size() <= maxFileSize {
		return
	}
	file, err := rotateLogFile(fl.file.Name())
	if err != nil {
		log.Println("mlog rotateLogFile error", err)
		return
	}
	fl.ll.SetOutput(file)
	fl.file.Close()
	fl.file = file
}

func genLogName(logName string) string {
	if logName == "" {
		logName = "globaltick"
	}
	return logName + ".log"
}

const (
	defaultDirMode  os.FileMode = 0755
	defaultFileMode os.FileMode = 0644
	defaultFileFlag int         = os.O_APPEND | os.O_CREATE | os.O_WRONLY
)

func openFile(fullpath string) (*os.File, error) {
	fullpath = strings.ReplaceAll(fullpath, "\\", "/")
	dir := filepath.Dir(fullpath)
	if _, err := os.Stat(dir); err != nil && !os.IsExist(err) {
		if err = os.MkdirAll(dir, defaultDirMode); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(fullpath, defaultFileFlag, defaultFileMode)
}

func rotateLogFile(filePath string) (*os.File, error) {
	newFilePath := fmt.Sprintf("%s.%s", filePath, time.Now().Format("20060102_150405"))
	if err := os.Rename(filePath, newFilePath); err != nil {
		return nil, err
	}
	return os.Create(filePath)
}
