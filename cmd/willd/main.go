// Command willd is the custodial inheritance engine's reference daemon: it
// wires the Will Engine, Asset Registry, Guardian Registry, and Release
// Dispatcher to a persistent store and a blob store, then runs the
// scheduler loop and a read-only admin/status HTTP surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"willvault/blobstore/diskstore"
	"willvault/core/events"
	"willvault/native/assets"
	"willvault/native/dispatch"
	"willvault/native/guardian"
	"willvault/native/will"
	"willvault/observability"
	"willvault/observability/logging"
	statepg "willvault/state/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run initialises and runs the willd daemon.
func run() error {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "path to willd configuration; empty uses built-in defaults")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("WILLD_ENV"))
	logger := logging.Setup("willd", env)

	cfg := DefaultConfig()
	if cfgPath != "" {
		loaded, err := LoadConfig(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	willStore, assetStore, guardianStore, err := openStores(cfg)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}

	blobDir := cfg.BlobDir
	if blobDir == "" {
		blobDir = "./willd-data/blobs"
	}
	blobs, err := diskstore.New(blobDir)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}

	guardianEngine := guardian.NewEngine(guardianStore, nil)
	assetEngine := assets.NewEngine(assetStore, assets.NewInMemoryLedger())
	dispatcher := dispatch.NewAdapter(assetEngine, guardianEngine)
	willEngine := will.NewEngine(willStore, nil, guardianEngine, dispatcher)
	willEngine.SetMinGuardianReputation(cfg.MinGuardianReputation)

	loggingEmitter := observability.NewLoggingEmitter(logger)
	metricsEmitter := observability.NewMetricsEmitter()
	willEngine.SetEmitter(events.NewMultiEmitter(loggingEmitter, metricsEmitter))
	guardianEngine.SetEmitter(loggingEmitter)
	assetEngine.SetEmitter(loggingEmitter)

	bearerToken, err := cfg.Admin.ResolveBearerToken()
	if err != nil {
		return fmt.Errorf("resolve admin bearer token: %w", err)
	}
	adminServer := NewAdminServer(willEngine, blobs, bearerToken)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      adminServer,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	pollInterval := cfg.PollInterval.Duration
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	batchSize := cfg.SchedulerBatchSize
	if batchSize <= 0 {
		batchSize = 10
	}
	scheduler := NewScheduler(willEngine, pollInterval, batchSize, logger)

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go scheduler.Run(stopCtx)

	errs := make(chan error, 1)
	go func() {
		logger.Info("willd listening", "addr", cfg.ListenAddress)
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case <-stopCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			_ = httpServer.Close()
			return err
		}
		return nil
	case err := <-errs:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

func openStores(cfg Config) (*statepg.WillStore, *statepg.AssetStore, *statepg.GuardianStore, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, nil, fmt.Errorf("database_url is required")
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := statepg.AutoMigrate(db); err != nil {
		return nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return statepg.NewWillStore(db), statepg.NewAssetStore(db), statepg.NewGuardianStore(db), nil
}
