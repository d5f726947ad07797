package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Row is a loosely-typed result row keyed by column name.
type Row map[string]any

// Driver is the minimal surface of the underlying SQL driver.
type Driver interface {
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
	Close()
}

// Client forwards queries to the driver without rewriting them.
type Client struct {
	driver Driver
}

// NewClient wraps an already constructed driver.
func NewClient(driver Driver) *Client {
	return &Client{driver: driver}
}

// SQL runs query with positional args ($1, $2, ...) and returns the raw rows.
// Driver errors are returned unchanged.
func (c *Client) SQL(ctx context.Context, query string, args ...any) ([]Row, error) {
	if c == nil || c.driver == nil {
		return nil, errors.New("database: client is not initialised")
	}
	return c.driver.Query(ctx, query, args...)
}

// Query is SQL with each row decoded into T by column name (json tags on T).
// T is not validated: unknown columns are dropped and absent ones stay zero.
func Query[T any](ctx context.Context, c *Client, query string, args ...any) ([]T, error) {
	rows, err := c.SQL(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		var item T
		if err := decodeRow(row, &item); err != nil {
			return nil, fmt.Errorf("database: decode row %d: %w", i, err)
		}
		out = append(out, item)
	}
	return out, nil
}

func decodeRow(row Row, dst any) error {
	raw, err := json.Marshal(row)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func (c *Client) close() {
	if c != nil && c.driver != nil {
		c.driver.Close()
	}
}
