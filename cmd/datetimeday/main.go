package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"

	"datetimeday/internal/config"
	appLog "datetimeday/internal/log"
	"datetimeday/internal/mcp"
	"datetimeday/internal/repl"
	"datetimeday/internal/temporal"
	"datetimeday/internal/tools"
	"datetimeday/internal/web"
)

const version = "0.1.0"

// flagConfig holds CLI flag values; non-empty values override the config file.
type flagConfig struct {
	configPath string
	transport  string
	listen     string
	timezone   string
	repl       bool
	debug      bool
}

func main() {
	flags := parseFlags(os.Args[1:])
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}
	appLog.Info("datetimeday starting", "version", version)

	if err := run(flags); err != nil {
		appLog.Error("datetimeday failed", err)
		os.Exit(1)
	}
	appLog.Info("datetimeday exiting")
}

func run(flags flagConfig) error {
	conf, err := loadConfig(flags.configPath)
	if err != nil {
		return fmt.Errorf("load config %q: %w", flags.configPath, err)
	}
	if err := applyFlags(conf, flags); err != nil {
		return err
	}
	if !flags.debug {
		appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	}

	appLog.Info("effective config",
		"transport", conf.Transport,
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"zone_refresh", conf.ZoneRefresh,
		"rate_limit_rps", conf.RateLimit.RequestsPerSecond,
		"basic_auth", conf.BasicAuthEnabled(),
		"repl", flags.repl,
	)

	engine, err := temporal.NewEngine(temporal.WithLocalZone(conf.Timezone))
	if err != nil {
		return fmt.Errorf("init engine: %w", err)
	}
	registry, err := tools.NewRegistry(engine)
	if err != nil {
		return fmt.Errorf("init tools: %w", err)
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler, err := startZoneRefresh(conf.ZoneRefresh, engine.Resolver())
	if err != nil {
		return err
	}
	if scheduler != nil {
		defer func() { <-scheduler.Stop().Done() }()
	}

	switch {
	case flags.repl:
		return repl.Run(ctx, registry, os.Stdin, os.Stdout)
	case conf.Transport == config.TransportHTTP:
		return web.NewServer(conf, registry, mcp.NewServer(registry, version)).Start(ctx)
	default:
		return mcp.NewServer(registry, version).ServeStdio(ctx, os.Stdin, os.Stdout)
	}
}

func parseFlags(args []string) flagConfig {
	var cfg flagConfig

	fs := flag.NewFlagSet("datetimeday", flag.ExitOnError)
	fs.StringVar(&cfg.configPath, "config", "", "Path to YAML config file (empty: built-in defaults, no file)")
	fs.StringVar(&cfg.transport, "transport", "", "Transport: stdio or http (overrides config if set)")
	fs.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	fs.StringVar(&cfg.timezone, "timezone", "", "Zone used as local time, e.g. Asia/Seoul (overrides config if set)")
	fs.BoolVar(&cfg.repl, "repl", false, "Start an interactive shell instead of serving")
	fs.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	_ = fs.Parse(args)

	return cfg
}

// loadConfig reads path, or returns the defaults when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.DefaultConfig(), nil
	}
	return config.Load(path)
}

// applyFlags copies set flags over conf.
func applyFlags(conf *config.Config, flags flagConfig) error {
	switch flags.transport {
	case "":
	case config.TransportStdio, config.TransportHTTP:
		conf.Transport = flags.transport
	default:
		return fmt.Errorf("unknown transport %q (want %s or %s)", flags.transport, config.TransportStdio, config.TransportHTTP)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.timezone != "" {
		conf.Timezone = flags.timezone
	}
	if flags.debug {
		conf.LogLevel = "debug"
	}
	conf.Normalize()
	return nil
}

// startZoneRefresh schedules periodic flushes of the resolver's location
// cache so that tzdata updates on disk are picked up by a long-running
// process. An empty spec disables the schedule and returns a nil Cron.
func startZoneRefresh(spec string, resolver *temporal.Resolver) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}
	if resolver == nil {
		return nil, errors.New("zone refresh: resolver is nil")
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, func() { flushZones(resolver) }); err != nil {
		return nil, fmt.Errorf("zone refresh schedule %q: %w", spec, err)
	}
	c.Start()
	appLog.Debug("zone refresh scheduled", "spec", spec)
	return c, nil
}

func flushZones(resolver *temporal.Resolver) {
	n := resolver.Flush()
	appLog.Info("timezone cache flushed", "entries", n)
}
