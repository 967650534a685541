package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/paygate/internal/adapter/driven/metrics"
	"github.com/ericfisherdev/paygate/internal/adapter/driven/passwordauth"
	httphandler "github.com/ericfisherdev/paygate/internal/adapter/driving/http"
	"github.com/ericfisherdev/paygate/internal/application"
	"github.com/ericfisherdev/paygate/internal/config"
	"github.com/ericfisherdev/paygate/internal/security/password"
	"github.com/ericfisherdev/paygate/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load .env (optional) and configuration.
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 2. Build the logger from config and make it the default.
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_driver", cfg.DBDriver,
		"db_path", cfg.DBPath,
		"secret_key_set", cfg.HasSecretKey(),
	)
	if !cfg.HasSecretKey() {
		logger.Warn("PAYGATE_SECRET_KEY not set, account reads and promotions will fail")
	}

	// 3. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Open the credential store and run migrations.
	stores, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := stores.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	// 5. Wire adapters and services.
	recorder := metrics.New()
	auth := passwordauth.New(stores.Operators, password.Default, logger)
	resolver := application.NewOriginResolver(stores.Credentials, recorder, logger)
	promotion := application.NewPromotionService(stores.Credentials, auth, recorder, logger)

	// 6. Create HTTP handler and routes.
	apiHandler := httphandler.NewHandler(resolver, promotion, stores, logger)
	handler := httphandler.NewServeMux(apiHandler, logger, recorder.Handler(), recorder)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 7. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	// 8. Graceful shutdown with 10s timeout to drain in-flight promotions.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
