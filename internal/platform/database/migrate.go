package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrations exposes the embedded goose migration files.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Migrate applies every pending migration to the database at dsn.
func Migrate(ctx context.Context, dsn string, logger *zap.Logger) error {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return ErrNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("database: open: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, Migrations())
	if err != nil {
		return fmt.Errorf("database: migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		var partial *goose.PartialError
		if errors.As(err, &partial) && partial.Failed != nil && partial.Failed.Source != nil {
			return fmt.Errorf("database: migration %s: %w", partial.Failed.Source.Path, err)
		}
		return fmt.Errorf("database: migrate: %w", err)
	}
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		logger.Info("migration applied",
			zap.Int64("version", res.Source.Version),
			zap.String("path", res.Source.Path),
			zap.Duration("duration", res.Duration),
		)
	}
	if len(results) == 0 {
		logger.Info("database schema is up to date")
	}
	return nil
}
