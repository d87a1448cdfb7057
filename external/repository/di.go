package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/foxseedlab/tsuyaku/internal/config"
	"github.com/foxseedlab/tsuyaku/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do/v2"
)

const databaseInitTimeout = 15 * time.Second

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (repository.Repository, error) {
		cfg := do.MustInvoke[*config.Config](i)
		ctx, cancel := context.WithTimeout(context.Background(), databaseInitTimeout)
		defer cancel()
		return OpenOrNoop(ctx, cfg.DatabaseURL), nil
	})
}

// OpenOrNoop is Open with archiving disabled instead of an error when the
// database cannot be reached.
func OpenOrNoop(ctx context.Context, databaseURL string) repository.Repository {
	repo, err := Open(ctx, databaseURL)
	if err != nil {
		slog.Warn("archive unavailable; continuing without it", "url", config.MaskSecret(databaseURL), "error", err)
		return NoopRepository{}
	}
	return repo
}

// Open selects the archive backend by the URL scheme: postgres:// and
// postgresql:// use pgx, sqlite:// uses an embedded SQLite file. An empty URL
// disables archiving.
func Open(ctx context.Context, databaseURL string) (repository.Repository, error) {
	switch {
	case databaseURL == "":
		slog.Info("database not configured; archive disabled")
		return NoopRepository{}, nil
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return openPostgres(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		repo, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		slog.Info("sqlite archive opened", "path", path)
		return repo, nil
	}
	return nil, fmt.Errorf("unsupported database url scheme: %s", config.MaskSecret(databaseURL))
}

func openPostgres(ctx context.Context, databaseURL string) (repository.Repository, error) {
	p, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := RunMigration(ctx, p); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to run migration: %w", err)
	}
	slog.Info("postgres archive opened")
	return NewPostgresRepository(p), nil
}
