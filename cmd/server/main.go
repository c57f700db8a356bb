package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	web "toursights/internal/adapters/http"
	"toursights/internal/adapters/location"
	"toursights/internal/adapters/logging"
	"toursights/internal/adapters/metrics"
	"toursights/internal/adapters/storage"
	"toursights/internal/adapters/storage/kv"
	"toursights/internal/application/orchestrators"
	"toursights/internal/config"
	"toursights/internal/domain/quiz"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, logCloser, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// WAL mode and busy timeout keep concurrent device writes from failing with SQLITE_BUSY.
	dsn := cfg.DBPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m := metrics.New()
	timedDB := storage.NewTimedDB(db, m, cfg.SlowQuery)
	backend := kv.NewSQLiteBackend(timedDB)

	registry := orchestrators.NewTrackingRegistry(orchestrators.TrackingRegistryDeps{
		Simulated:   location.NewSimulated(cfg.TickInterval),
		IncrementKm: cfg.IncrementKm,
		Observer:    m,
		Gauge:       m,
	})

	stopMaintenance := orchestrators.StartMaintenanceScheduler(ctx, orchestrators.MaintenanceDeps{
		Registry: registry,
		Pruner:   backend,
	}, orchestrators.MaintenanceConfig{
		Interval:        cfg.SweepInterval,
		SessionIdleTTL:  cfg.TrackingIdleTTL,
		RunningTTL:      cfg.TrackingRunTTL,
		DeviceRetention: cfg.DeviceRetention,
	})
	defer stopMaintenance()

	csrfKey, generated, err := cfg.CSRFKey()
	if err != nil {
		return err
	}
	if generated {
		slog.Warn("csrf_key_generated", "detail", "tokens do not survive a restart; set TS_CSRF_KEY")
	}

	handler, err := web.NewMux(ctx, web.Options{
		StaticDir:          cfg.StaticDir,
		CSRFKey:            csrfKey,
		SecureCookies:      cfg.IsProduction(),
		TrustedOrigins:     cfg.TrustedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateBurst:          cfg.RateBurst,
		SlowRequest:        cfg.SlowRequest,
	}, web.Deps{
		Backend:  backend,
		Registry: registry,
		Locks:    &orchestrators.ScopeLocks{},
		Catalog:  quiz.DefaultCatalog,
		Metrics:  m,
		Health:   timedDB,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_start",
			"version", version,
			"addr", cfg.Addr,
			"env", cfg.Env,
			"schema", storage.LatestSchemaVersion(),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
