// Package storage opens the configured credential backend and wires its
// repositories to the driven ports.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/paygate/internal/adapter/driven/postgres"
	"github.com/ericfisherdev/paygate/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/paygate/internal/config"
	"github.com/ericfisherdev/paygate/internal/domain/port/driven"
)

// CredentialRepository is implemented by both backends' credential repos.
type CredentialRepository interface {
	driven.CredentialStore
	driven.LegacySeeder
}

// Stores bundles the repositories of one open backend.
type Stores struct {
	Credentials CredentialRepository
	Operators   driven.OperatorStore

	ping  func(ctx context.Context) error
	close func() error
}

// Ping checks the backend connection.
func (s *Stores) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

// Close releases the backend connections.
func (s *Stores) Close() error {
	return s.close()
}

// Open connects to the backend selected by cfg.DBDriver, applies pending
// migrations and builds the repositories.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	case config.DriverSQLite, "":
		return openSQLite(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DBDriver)
	}
}

func openSQLite(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	db, err := sqlite.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", cfg.DBPath, err)
	}
	logger.Info("database opened", "driver", config.DriverSQLite, "path", cfg.DBPath)

	if err := sqlite.RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("migrations complete")

	creds, err := sqlite.NewCredentialRepo(db, cfg.SecretKey)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Stores{
		Credentials: creds,
		Operators:   sqlite.NewOperatorRepo(db),
		ping:        db.Ping,
		close:       db.Close,
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	logger.Info("database opened", "driver", config.DriverPostgres)

	if err := postgres.RunMigrations(pool); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("migrations complete")

	creds, err := postgres.NewCredentialRepo(pool, cfg.SecretKey)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &Stores{
		Credentials: creds,
		Operators:   postgres.NewOperatorRepo(pool),
		ping:        pool.Ping,
		close: func() error {
			pool.Close()
			return nil
		},
	}, nil
}
