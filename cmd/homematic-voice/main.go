package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	flag "github.com/spf13/pflag"

	"homematic-voice/config"
	"homematic-voice/internal/application"
	"homematic-voice/internal/infra/homematic"
	"homematic-voice/internal/infra/pushover"
	"homematic-voice/internal/infra/voice"
)

func main() {
	configPath := flag.StringP("config", "c", "config.yaml", "path to config file")
	envFile := flag.StringP("env", "e", ".env", "path to env file")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("loading env file", "path", *envFile, "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry, err := homematic.NewRegistry(cfg.DomainDevices(), logger)
	if err != nil {
		logger.Error("building device registry", "error", err)
		os.Exit(1)
	}
	for _, d := range registry.Devices() {
		logger.Debug("device", "pref", d.Pref, "switch", d.Switch, "ise_id", d.ISEID, "name", d.Name)
	}

	ccu := homematic.NewClient(cfg.Homematic.BaseURL, cfg.Homematic.TimeoutDuration)

	var notifier application.Notifier
	if cfg.Pushover.Enabled {
		notifier = pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.UserKey)
	} else {
		notifier = &application.NoopNotifier{}
	}

	dispatcher := application.NewDispatcher(ccu, registry, notifier, logger)

	source := voice.NewHTTPSource(voice.Options{
		Addr:             cfg.Server.HTTPAddr,
		AuthToken:        cfg.Server.AuthToken,
		LaunchAppMessage: cfg.Messages.LaunchApp,

		TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
	}, dispatcher, logger)

	logger.Info("starting homematic voice handler",
		"ccu", cfg.Homematic.BaseURL,
		"devices", len(registry.Devices()),
	)

	if err := source.Start(ctx); err != nil {
		logger.Error("starting voice source", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	if err := source.Stop(); err != nil {
		logger.Error("stopping voice source", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	case "tint":
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
