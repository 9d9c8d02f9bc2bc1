package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/config"
	_ "github.com/yuriy-kovalchuk/yk-dns-janitor/internal/dns/providers"
)

var Version = "dev"

func main() {
	if err := newApp().RunContext(signals.SetupSignalHandler(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "yk-dns-janitor",
		Usage:   "delete A records that point at neither a known server nor a live host",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file (default $JANITOR_CONFIG or " + config.DefaultPath + " if present)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: config.DefaultEnvFile,
				Usage: "env file holding API_KEY, ignored when missing",
			},
			&cli.StringFlag{
				Name:  "domain",
				Usage: "DNS zone to clean up (overrides DOMAIN and the config file)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "report what would be deleted without deleting",
			},
			&cli.StringFlag{
				Name:  "probe",
				Usage: "liveness probe: exec, icmp or tcp",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "number of probes to run in parallel",
			},
			&cli.BoolFlag{
				Name:  "zap-devel",
				Value: true,
				Usage: "development mode logging (console encoder, debug level)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level: debug, info or error",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable colored status output",
			},
		},
		Before: setupLogger,
		Action: reconcileAction,
		Commands: []*cli.Command{
			{
				Name:   "reconcile",
				Usage:  "probe unknown A records and delete the dead ones (default)",
				Action: reconcileAction,
			},
			{
				Name:   "inventory",
				Usage:  "print the server IPs the inventory resolves to",
				Action: inventoryAction,
			},
			{
				Name:   "records",
				Usage:  "print the A records of the domain and whether they match a server",
				Action: recordsAction,
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	opts := zap.Options{
		Development: c.Bool("zap-devel"),
	}
	if lvl := c.String("log-level"); lvl != "" {
		level, err := zapcore.ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		opts.Level = level
	}
	ctrllog.SetLogger(zap.New(zap.UseFlagOptions(&opts)))
	return nil
}
