package main

import (
	"context"
	"sync"
	"time"

	"github.com/urfave/cli"

	"github.com/fixkme/globaltick/framework/app"
	"github.com/fixkme/globaltick/framework/config"
	"github.com/fixkme/globaltick/metrics"
	"github.com/fixkme/globaltick/mlog"
	"github.com/fixkme/globaltick/relay"
	"github.com/fixkme/globaltick/tick"
)

func run(c *cli.Context) error {
	if err := config.LoadConfig(c.String("config"), config.EnvLoader(envPrefix)); err != nil {
		return err
	}
	conf := config.Config

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	defer func() {
		cancel()
		wg.Wait()
	}()
	if err := setupLog(ctx, wg, &conf.LogConfig); err != nil {
		return err
	}
	mlog.Debugf("config: %s", conf.JsonFormat())

	collector := metrics.NewCollector(nodeName(conf))
	s := tick.Init(schedulerOptions(conf, collector))

	mods := []app.Module{newStatusModule("status", s, 10*time.Second)}
	if conf.MetricsAddr != "" {
		srv, err := metrics.NewServer("metrics", conf.MetricsAddr, collector)
		if err != nil {
			return err
		}
		mods = append(mods, srv)
	}
	if conf.RelayEnable {
		client, err := relay.NewClient(ctx, &conf.RedisConfig)
		if err != nil {
			return err
		}
		defer client.Close()
		mods = append(mods, relay.New("relay", client, s, relayOptions(&conf.RelayConfig)))
	}

	app.DefaultApp().Run(mods...)
	return nil
}

func setupLog(ctx context.Context, wg *sync.WaitGroup, conf *config.LogConfig) error {
	level := mlog.ParseLevel(conf.LogLevel, mlog.InfoLevel)
	if conf.LogPath == "" {
		return mlog.UseStdLogger(level)
	}
	return mlog.UseDefaultLogger(ctx, wg, conf.LogPath, conf.LogName, level, conf.LogStdOut)
}

func nodeName(conf *config.AppConfig) string {
	if conf.NodeName != "" {
		return conf.NodeName
	}
	return "tickd"
}

func schedulerOptions(conf *config.AppConfig, observer tick.Observer) tick.Options {
	opts := tick.DefaultOptions()
	if iv := conf.Interval(); iv > 0 {
		opts.Interval = iv
	}
	opts.TaskQueueSize = conf.TaskQueueSize
	opts.Observer = observer
	return opts
}

func relayOptions(conf *config.RelayConfig) relay.Options {
	return relay.Options{
		Prefix:  conf.RelayPrefix,
		Rate:    conf.RelayRate,
		Burst:   conf.RelayBurst,
		Timeout: conf.Timeout(),
	}
}
