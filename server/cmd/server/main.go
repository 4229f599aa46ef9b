package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/obsidianstack/creditmeter/server/internal/api"
	"github.com/obsidianstack/creditmeter/server/internal/config"
	"github.com/obsidianstack/creditmeter/server/internal/enrich"
	"github.com/obsidianstack/creditmeter/server/internal/metrics"
	"github.com/obsidianstack/creditmeter/server/internal/remote"
	"github.com/obsidianstack/creditmeter/server/internal/usage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file; defaults are used if it does not exist")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("creditmeter starting", "config", *configPath)

	cfg, watch, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if lvl, err := config.ParseLevel(cfg.Server.LogLevel); err == nil {
		level.Set(lvl)
	}

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"remote", cfg.Remote.BaseURL,
		"report_concurrency", cfg.Remote.ReportConcurrency,
		"remote_timeout", cfg.Remote.Timeout,
		"rate_limit", cfg.Remote.RateLimit,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	client, err := remote.New(cfg.Remote, m)
	if err != nil {
		slog.Error("failed to build remote client", "err", err)
		os.Exit(1)
	}
	svc := usage.NewService(client, enrich.New(client, cfg.Remote.ReportConcurrency, m), m)

	// Hot reload applies log_level only.
	// TODO: rebuild the remote client when remote.* changes on reload.
	if watch {
		go func() {
			if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
				lvl, err := config.ParseLevel(updated.Server.LogLevel)
				if err != nil {
					return
				}
				level.Set(lvl)
				slog.Info("config hot-reloaded", "log_level", updated.Server.LogLevel)
			}); err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           api.New(svc, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("creditmeter shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer stop()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "err", err)
	}

	if families, err := reg.Gather(); err == nil {
		slog.Info("served totals",
			"usage_requests", metrics.Sum(families, "creditmeter_usage_requests_total"),
			"remote_fetches", metrics.Sum(families, "creditmeter_remote_fetches_total"),
		)
	}
}

// loadConfig loads path when it exists and falls back to defaults otherwise.
// watch reports whether the file should be watched for changes.
func loadConfig(path string) (cfg *config.Config, watch bool, err error) {
	if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", path)
		cfg, err = config.LoadDefaults()
		return cfg, false, err
	}
	cfg, err = config.Load(path)
	return cfg, err == nil, err
}
