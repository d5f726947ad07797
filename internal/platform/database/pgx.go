package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DialPgx opens a pgx connection pool. The pool connects lazily, so a bad host surfaces on the first query.
func DialPgx(ctx context.Context, dsn string) (Driver, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	return &pgxDriver{pool: pool}, nil
}

type pgxDriver struct {
	pool *pgxpool.Pool
}

func (d *pgxDriver) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	out := make([]Row, len(maps))
	for i, m := range maps {
		out[i] = Row(m)
	}
	return out, nil
}

func (d *pgxDriver) Close() {
	d.pool.Close()
}
