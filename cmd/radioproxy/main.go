package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/grafana/dskit/flagext"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/version"
	"gopkg.in/yaml.v2"

	"github.com/zachfi/zkit/pkg/tracing"

	"github.com/zachfi/radioproxy/app"
)

const appName = "radioproxy"

// Version is set via build flag -ldflags -X main.Version
var (
	Version  string
	Branch   string
	Revision string
)

func init() {
	version.Version = Version
	version.Branch = Branch
	version.Revision = Revision
	prometheus.MustRegister(version.NewCollector(appName))
}

func main() {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	cfg, err := loadConfig(os.Args[1:], flag.CommandLine)
	if err != nil {
		slog.Error("failed to load config file", "err", err)
		os.Exit(1)
	}

	if err := level.UnmarshalText([]byte(cfg.Server.LogLevel.String())); err != nil {
		logger.Warn("unknown log level, using info", "level", cfg.Server.LogLevel.String())
	}

	shutdownTracer, err := tracing.InstallOpenTelemetryTracer(&cfg.Tracing, logger, appName, Version)
	if err != nil {
		logger.Error("error initialising tracer", "err", err)
		os.Exit(1)
	}
	defer shutdownTracer()

	a, err := app.New(*cfg, *logger)
	if err != nil {
		logger.Error("failed to create", "app", appName, "err", err)
		os.Exit(1)
	}

	logger.Info("starting", "app", appName, "version", version.Info())

	if err := a.Run(context.Background()); err != nil {
		logger.Error("error running", "app", appName, "err", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the optional -config.file YAML and the
// command line, in that order.
func loadConfig(args []string, f *flag.FlagSet) (*app.Config, error) {
	const (
		configFileOption = "config.file"
	)

	var configFile string

	config := &app.Config{}

	// first get the config file
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&configFile, configFileOption, "", "")

	// Parsing stops at the first unknown flag, so keep dropping leading
	// arguments until -config.file is found or none are left.
	for rest := args; len(rest) > 0; rest = rest[1:] {
		_ = fs.Parse(rest)
	}

	// load config defaults and register flags
	config.RegisterFlagsAndApplyDefaults("", f)

	// overlay with config file if provided
	if configFile != "" {
		buff, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read configFile %s: %w", configFile, err)
		}

		err = yaml.UnmarshalStrict(buff, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse configFile %s: %w", configFile, err)
		}
	}

	// overlay with cli
	flagext.IgnoredFlag(f, configFileOption, "Configuration file to load")
	if err := f.Parse(args); err != nil {
		return nil, err
	}

	return config, nil
}
