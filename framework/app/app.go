package app

import (
	"log"
	"os"
	"os/signal"
	"reflect"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/fixkme/globaltick/mlog"
)

// 进程全局状态
const (
	AppStateNone = iota // 未开始或已停止
	AppStateInit        // 正在初始化中
	AppStateRun         // 正在运行中
	AppStateStop        // 正在停止中
)

// 单例
var defaultApp = New()

// Module tickd中的调度器、指标服务、心跳转发都是模块
type Module interface {
	OnInit() error // 初始化
	Destroy()      // 销毁，需要让Run返回
	Run()          // 启动，阻塞到Destroy
	Name() string  // 名字
}

// DefaultApp 默认单例
func DefaultApp() *App {
	return defaultApp
}

// App 中的 mods 在初始化之后不能变更
type App struct {
	mods  []Module
	state atomic.Int32
	sig   chan os.Signal
	wg    sync.WaitGroup
}

func New() *App {
	return &App{sig: make(chan os.Signal, 1)}
}

// GetState 获取状态
func (app *App) GetState() int32 {
	return app.state.Load()
}

// start 按顺序初始化所有模块，然后各自在协程中运行
func (app *App) start(mods ...Module) {
	// 单个app不能启动两次
	if app.GetState() != AppStateNone || len(app.mods) != 0 {
		log.Fatal("app mods cannot start twice")
	}
	mlog.Info("app starting up")
	app.mods = append(app.mods, mods...)
	app.state.Store(AppStateInit)
	for _, mi := range app.mods {
		if err := mi.OnInit(); err != nil {
			log.Fatalf("module %v init error %v", reflect.TypeOf(mi), err)
		}
	}
	for _, mi := range app.mods {
		app.wg.Add(1)
		go run(mi, &app.wg)
	}
	app.state.Store(AppStateRun)
	mlog.Info("app started")
}

func (app *App) stop() {
	if app.GetState() == AppStateStop {
		return
	}
	mlog.Info("app stop begin")
	app.state.Store(AppStateStop)
	// 先进后出
	for i := len(app.mods) - 1; i >= 0; i-- {
		mi := app.mods[i]
		mlog.Infof("app stop module %s", mi.Name())
		destroy(mi)
	}
	app.wg.Wait()
	app.mods = nil
	app.state.Store(AppStateNone)
	mlog.Info("app stopped")
}

func run(mi Module, wg *sync.WaitGroup) {
	defer wg.Done()
	defer func() {
		if r := recover(); r != nil {
			mlog.Errorf("%s module run panic: %v\n%s", mi.Name(), r, debug.Stack())
		}
	}()
	mi.Run()
}

func destroy(mi Module) {
	defer func() {
		if r := recover(); r != nil {
			mlog.Errorf("%s module destroy panic: %v\n%s", mi.Name(), r, debug.Stack())
		}
	}()
	mi.Destroy()
}

// Run 启动模块并阻塞到收到退出信号，SIGHUP忽略
func (app *App) Run(mods ...Module) {
	signal.Notify(app.sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(app.sig)
	app.start(mods...)
	for {
		sig := <-app.sig
		mlog.Infof("app closing down (signal: %v)", sig)
		if sig != syscall.SIGHUP {
			break
		}
	}
	app.stop()
}

func (app *App) Stop() {
	select {
	case app.sig <- syscall.SIGTERM:
	default:
	}
}
