package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

const envPrefix = "GLOBALTICK_"

var version = "dev"

var configFlag = cli.StringFlag{
	Name:   "config, c",
	Usage:  "config file (.json, .yaml or .yml)",
	EnvVar: envPrefix + "CONFIG",
}

func main() {
	if err := Execute(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func Execute(args []string) error {
	app := cli.App{
		Name:      "tickd",
		HelpName:  "tickd",
		Usage:     "process-wide tick scheduler daemon",
		Version:   version,
		UsageText: "tickd <command> [arguments...]",
		Commands: []cli.Command{
			{
				Name:   "run",
				Usage:  "run the scheduler with metrics and heartbeat relay",
				Action: run,
				Flags:  []cli.Flag{configFlag},
			},
			{
				Name:   "watch",
				Usage:  "print heartbeats relayed through redis",
				Action: watch,
				Flags: []cli.Flag{
					configFlag,
					cli.StringFlag{
						Name:  "prefix, p",
						Usage: "relay channel prefix, overrides relay_prefix",
					},
				},
			},
		},
	}
	return app.Run(args)
}
