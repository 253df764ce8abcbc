package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/fixkme/globaltick/framework/config"
	"github.com/fixkme/globaltick/mlog"
	"github.com/fixkme/globaltick/relay"
)

func watch(c *cli.Context) error {
	if err := config.LoadConfig(c.String("config"), config.EnvLoader(envPrefix)); err != nil {
		return err
	}
	conf := config.Config
	if err := mlog.UseStdLogger(mlog.ParseLevel(conf.LogLevel, mlog.WarnLevel)); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := relay.NewClient(ctx, &conf.RedisConfig)
	if err != nil {
		return err
	}
	defer client.Close()

	prefix := conf.RelayPrefix
	if p := c.String("prefix"); p != "" {
		prefix = p
	}
	return relay.Listen(ctx, client, prefix, func(source string, elapsed time.Duration) {
		fmt.Fprintf(os.Stdout, "%s\t%s\n", source, elapsed)
	})
}
