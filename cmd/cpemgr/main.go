// Command cpemgr runs the CPE management engine: vendor classification,
// adaptive configuration dispatch, and the recurring fleet health scans.
//
// # Usage
//
//	cpemgr --config /etc/cpemgr/config.yaml
//
// # Configuration
//
// The engine can be configured via:
// - Command-line flags
// - Environment variables (CPEMGR_*)
// - YAML config file
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dixzzzzz/axelinkapps-sub000/internal/acs"
	"github.com/dixzzzzz/axelinkapps-sub000/internal/cache"
	"github.com/dixzzzzz/axelinkapps-sub000/internal/classify"
	"github.com/dixzzzzz/axelinkapps-sub000/internal/config"
	"github.com/dixzzzzz/axelinkapps-sub000/internal/dispatch"
	"github.com/dixzzzzz/axelinkapps-sub000/internal/metrics"
	"github.com/dixzzzzz/axelinkapps-sub000/internal/monitor"
	"github.com/dixzzzzz/axelinkapps-sub000/internal/notify"
	"github.com/dixzzzzz/axelinkapps-sub000/internal/secrets"
	"github.com/dixzzzzz/axelinkapps-sub000/internal/service"
	"github.com/dixzzzzz/axelinkapps-sub000/internal/subscriber"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file")
		port       = flag.Int("port", 8080, "Health endpoint port")
		debug      = flag.Bool("debug", false, "Enable debug logging")
		version    = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Println("cpemgr v0.1.0")
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadFromFile(*configPath)
		if err != nil {
			logger.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Resolve credentials.
	secretStore, err := secrets.NewStore(secrets.ConfigFromEnv(), logger)
	if err != nil {
		logger.Error("failed to create secrets store", "error", err)
		os.Exit(1)
	}
	acsPassword, err := secretStore.Get(ctx, secrets.NameACSPassword)
	if err != nil {
		logger.Error("failed to resolve ACS password", "error", err)
		os.Exit(1)
	}
	notifyToken, err := secretStore.Get(ctx, secrets.NameNotifyToken)
	if err != nil {
		logger.Error("failed to resolve notify token", "error", err)
		os.Exit(1)
	}

	// ACS client and classification.
	acsClient := acs.NewClient(acs.Config{
		BaseURL:   cfg.ACS.URL,
		Username:  cfg.ACS.Username,
		Password:  acsPassword,
		Timeout:   cfg.ACS.Timeout,
		RateLimit: cfg.ACS.RateLimit,
	}, logger)

	classifier := classify.New()
	classifications := classify.NewCache(acsClient, classifier, logger)
	health := metrics.NewCollector(classifications)
	dispatcher := dispatch.New(acsClient, classifications, logger)

	// Optional device read cache.
	var devCache *cache.Cache
	if cfg.Redis.URL != "" {
		devCache, err = cache.New(cfg.Redis.URL, logger)
		if err != nil {
			logger.Warn("redis unavailable, device reads uncached", "error", err)
		} else {
			logger.Info("device read cache enabled")
		}
	}

	// Optional subscriber lookup.
	var subscribers monitor.SubscriberLookup
	if cfg.Database.URL != "" {
		pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
		store, err := subscriber.NewStoreFromURL(pingCtx, cfg.Database.URL)
		if err == nil {
			err = store.Ping(pingCtx)
		}
		pingCancel()
		if err != nil {
			logger.Warn("subscriber database unavailable", "error", err)
		} else {
			defer store.Close()
			subscribers = store
			logger.Info("subscriber lookup enabled")
		}
	}

	// Notification sink.
	var notifier monitor.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhook(notify.WebhookConfig{
			URL:   cfg.Notify.WebhookURL,
			Token: notifyToken,
		}, logger)
	} else {
		logger.Warn("no webhook configured, alerts will only be logged")
		notifier = notify.NewLogOnly(logger)
	}

	svc := service.New(acsClient, dispatcher, classifications, devCache, health, logger)

	// The admin and customer routes mount svc elsewhere; the engine itself
	// only exposes its health.
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Health()); err != nil {
			logger.Error("health encode failed", "error", err)
		}
	})
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
			os.Exit(1)
		}
	}()

	fleetMonitor := monitor.New(acsClient, notifier, subscribers, health, monitor.Config{
		StartupDelay:           cfg.Monitor.StartupDelay,
		SignalScan:             monitor.JobConfig{Enabled: cfg.Monitor.SignalScan.Enabled, Interval: cfg.Monitor.SignalScan.Interval},
		LivenessScan:           monitor.JobConfig{Enabled: cfg.Monitor.LivenessScan.Enabled, Interval: cfg.Monitor.LivenessScan.Interval},
		SignalThresholdDBm:     cfg.Monitor.SignalScan.ThresholdDBm,
		LivenessThresholdHours: cfg.Monitor.LivenessScan.ThresholdHours,
	}, logger)
	fleetMonitor.Start(ctx)

	logger.Info("engine started",
		"acs_url", cfg.ACS.URL,
		"signal_scan", cfg.Monitor.SignalScan.Enabled,
		"liveness_scan", cfg.Monitor.LivenessScan.Enabled,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")
	fleetMonitor.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}
