/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave manager server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (defaults, optional YAML, LEAVE_* env)
  2. Build the zap logger
  3. Open and migrate the SQLite store
  4. Build leave policies and the balance service
  5. Seed the default admin
  6. Open the certificate backend
  7. Start the session purge scheduler
  8. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to a YAML config file (optional)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (server.shutdown_timeout)
  3. Stop the scheduler, close the database
  4. Exit

EXAMPLES:
  LEAVE_AUTH_SECRET=change-me ./server
  ./server -config=config.yaml
  LEAVE_DATABASE_PATH=":memory:" LEAVE_AUTH_SECRET=dev ./server

SEE ALSO:
  - config/config.go: every configuration key
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/warp/leave-manager/api"
	"github.com/warp/leave-manager/auth"
	"github.com/warp/leave-manager/certstore"
	"github.com/warp/leave-manager/config"
	"github.com/warp/leave-manager/factory"
	"github.com/warp/leave-manager/logging"
	"github.com/warp/leave-manager/store/sqlite"
	"github.com/warp/leave-manager/timeoff"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "leave-manager: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	// Initialize store
	if cfg.Database.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o750); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	// Policies
	annual, sick, err := cfg.Policies()
	if err != nil {
		return err
	}
	balances := timeoff.NewBalanceService(store, annual, sick)
	logger.Info("leave policies loaded",
		zap.String("annual", factory.Describe(annual)),
		zap.Int("sick_probation_days", sick.ProbationDays),
		zap.Int("sick_cycle_days", sick.CycleDays),
	)

	// Auth
	authSvc := auth.NewService(store, cfg.Auth.Secret, cfg.Auth.SessionTTL, nil, logger.Named("auth"))
	authSvc.BcryptCost = cfg.Auth.BcryptCost
	ctx := context.Background()
	if _, err := authSvc.EnsureDefaultAdmin(ctx, cfg.Auth.DefaultAdminUsername, cfg.Auth.DefaultAdminPassword); err != nil {
		return fmt.Errorf("failed to seed default admin: %w", err)
	}

	// Certificates
	certs, err := certstore.New(ctx, cfg.Certificates)
	if err != nil {
		return fmt.Errorf("failed to open certificate store: %w", err)
	}
	logger.Info("certificate store ready", zap.String("backend", cfg.Certificates.Backend))

	// Scheduler
	scheduler := api.NewSessionPurgeScheduler(store, logger.Named("scheduler"))
	scheduler.Enabled = cfg.Scheduler.Enabled
	scheduler.Interval = cfg.Scheduler.SessionPurgeInterval
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(store, balances, authSvc, certs, logger.Named("http"), api.Options{
		CookieName:     cfg.Auth.CookieName,
		CookieSecure:   cfg.Auth.CookieSecure,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		CORSOrigins:    cfg.Server.CORSOrigins,
		StaticDir:      cfg.Server.StaticDir,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
