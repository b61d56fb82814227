package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/taniwha3/meshbond/internal/config"
	"github.com/taniwha3/meshbond/internal/discovery"
	"github.com/taniwha3/meshbond/internal/failover"
	"github.com/taniwha3/meshbond/internal/health"
	"github.com/taniwha3/meshbond/internal/lockfile"
	"github.com/taniwha3/meshbond/internal/logging"
	"github.com/taniwha3/meshbond/internal/mesh"
	"github.com/taniwha3/meshbond/internal/platform"
	"github.com/taniwha3/meshbond/internal/watchdog"
)

var (
	configPath  = flag.String("config", "/etc/meshbond/config.yaml", "Path to config file")
	healthAddr  = flag.String("health-addr", ":9100", "Health check HTTP server address")
	version     = flag.Bool("version", false, "Print version and exit")
	appVersion  = "dev" // Set by -ldflags during build
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("meshbond %s\n", appVersion)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logLevel := logging.LevelInfo
	if cfg.Logging.Level != "" {
		logLevel = logging.Level(cfg.Logging.Level)
	}
	logFormat := logging.FormatConsole
	if cfg.Logging.Format != "" {
		logFormat = logging.Format(cfg.Logging.Format)
	}

	logger := logging.New(logging.Config{
		Level:  logLevel,
		Format: logFormat,
		Output: os.Stdout,
	})
	logging.SetDefault(logger)

	logger.Info("starting meshbond",
		slog.String("version", appVersion),
		slog.String("primary", cfg.Interfaces.Primary),
		slog.Any("backups", cfg.Interfaces.Backups),
	)

	lockPath := lockfile.GetLockPath(*configPath)
	lock, err := lockfile.Acquire(lockPath)
	if err != nil {
		logger.Error("failed to acquire process lock - another instance may be running",
			slog.Any("error", err),
			slog.String("lock_path", lockPath),
		)
		os.Exit(1)
	}
	defer lock.Release()
	logger.Info("process lock acquired", slog.String("lock_path", lockPath))

	wd := watchdog.NewPinger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if wd.IsEnabled() {
		go wd.Start(ctx)
		logger.Info("watchdog pinger started", slog.Duration("interval", wd.GetInterval()))
	}

	healthChecker := health.NewChecker(health.DefaultThresholds())

	mode, err := cfg.LinkAggregation.AggregationMode()
	if err != nil {
		logger.Error("invalid link_aggregation.mode", slog.Any("error", err))
		os.Exit(1)
	}
	threshold, recoveryThreshold, monitoringInterval, err := cfg.FailoverThresholds()
	if err != nil {
		logger.Error("invalid failover configuration", slog.Any("error", err))
		os.Exit(1)
	}

	group := cfg.NodeDiscovery.Group
	if group == "" {
		group = discovery.DefaultGroup
	}
	discoveryPort := cfg.NodeDiscovery.Port
	if discoveryPort == 0 {
		discoveryPort = discovery.DefaultPort
	}

	manager := mesh.New(platform.NewRealPort(), mesh.Config{
		Group:           group,
		DiscoveryPort:   discoveryPort,
		MaxQueueSize:    cfg.LinkAggregation.MaxQueueSize,
		AggregationMode: mode,
		Primary:         cfg.Interfaces.Primary,
		Backups:         cfg.Interfaces.Backups,
		FailoverThresholds: failover.Thresholds{
			FailoverThreshold:  threshold,
			RecoveryThreshold:  recoveryThreshold,
			MonitoringInterval: monitoringInterval,
		},
	}, logger)
	manager.SetHealth(healthChecker)

	if err := manager.Start(ctx); err != nil {
		logger.Error("failed to start mesh manager", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("mesh manager started")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting control/health server", slog.String("address", *healthAddr))
		if err := serveAPI(ctx, buildMux(healthChecker, manager), *healthAddr); err != nil {
			logger.Error("control/health server error", slog.Any("error", err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if watchdog.IsRunningUnderSystemd() {
		wd.NotifyReady()
	}
	logger.Info("meshbond running. Press Ctrl+C to stop.")

	<-sigChan
	logger.Info("shutdown signal received, stopping...")

	if watchdog.IsRunningUnderSystemd() {
		wd.NotifyStopping()
	}

	manager.Stop()
	cancel()
	wg.Wait()

	logger.Info("shutdown complete")
}
