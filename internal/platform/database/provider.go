package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"finitefield.org/vpnguide-web/internal/platform/config"
)

const defaultDialTimeout = 10 * time.Second

var (
	// ErrNotConfigured is returned by the first query when no connection string is configured.
	ErrNotConfigured = errors.New("database: DATABASE_URL environment variable is not set")
	// ErrProviderClosed is returned once Close has been called.
	ErrProviderClosed = errors.New("database: provider is closed")
)

// Dialer constructs a Driver for the given connection string.
type Dialer func(ctx context.Context, dsn string) (Driver, error)

// Provider lazily initialises the process-wide Client on first use. It is built once during
// application start-up and passed to the repositories that need it.
type Provider struct {
	dsn         string
	dialTimeout time.Duration
	dial        Dialer

	stateMu sync.Mutex
	initCh  chan struct{}
	client  *Client

	closed atomic.Bool
}

// ProviderOption customises the Provider behaviour.
type ProviderOption func(*Provider)

// WithDialer replaces the pgx dialer (used by tests).
func WithDialer(d Dialer) ProviderOption {
	return func(p *Provider) {
		if d != nil {
			p.dial = d
		}
	}
}

// NewProvider constructs a Provider from the database configuration. No connection is made here.
func NewProvider(cfg config.DatabaseConfig, opts ...ProviderOption) *Provider {
	p := &Provider{
		dsn:         strings.TrimSpace(cfg.URL),
		dialTimeout: defaultDialTimeout,
		dial:        DialPgx,
	}
	if cfg.DialTimeout > 0 {
		p.dialTimeout = cfg.DialTimeout
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Configured reports whether a connection string is present.
func (p *Provider) Configured() bool {
	return p != nil && p.dsn != ""
}

// Client returns the shared client, dialing it on first call. Every later call returns the same pointer.
func (p *Provider) Client(ctx context.Context) (*Client, error) {
	if ctx == nil {
		return nil, errors.New("database: context is required")
	}

	for {
		if p.closed.Load() {
			return nil, ErrProviderClosed
		}

		p.stateMu.Lock()
		if p.client != nil {
			client := p.client
			p.stateMu.Unlock()
			return client, nil
		}
		if waitCh := p.initCh; waitCh != nil {
			p.stateMu.Unlock()
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-waitCh:
				// the initialising caller finished; re-check state
				continue
			}
		}

		waitCh := make(chan struct{})
		p.initCh = waitCh
		p.stateMu.Unlock()

		client, err := p.createClient(ctx)

		p.stateMu.Lock()
		p.initCh = nil
		if err == nil {
			p.client = client
		}
		p.stateMu.Unlock()
		close(waitCh)

		if err != nil {
			return nil, err
		}
		if p.closed.Load() {
			return nil, ErrProviderClosed
		}
		return client, nil
	}
}

func (p *Provider) createClient(ctx context.Context) (*Client, error) {
	if p.dsn == "" {
		return nil, ErrNotConfigured
	}
	dialCtx := ctx
	if p.dialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, p.dialTimeout)
		defer cancel()
	}
	driver, err := p.dial(dialCtx, p.dsn)
	if err != nil {
		return nil, fmt.Errorf("database: create client: %w", err)
	}
	return NewClient(driver), nil
}

// SQL is a convenience that resolves the shared client and runs the query on it.
func (p *Provider) SQL(ctx context.Context, query string, args ...any) ([]Row, error) {
	client, err := p.Client(ctx)
	if err != nil {
		return nil, err
	}
	return client.SQL(ctx, query, args...)
}

// Close releases the underlying client. It waits for an in-flight initialisation to settle first.
// The Provider cannot be reused afterwards.
func (p *Provider) Close(ctx context.Context) error {
	if p == nil || p.closed.Load() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var client *Client
	for {
		p.stateMu.Lock()
		if p.closed.Load() {
			p.stateMu.Unlock()
			return nil
		}
		if waitCh := p.initCh; waitCh != nil {
			p.stateMu.Unlock()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-waitCh:
				continue
			}
		}
		p.closed.Store(true)
		client = p.client
		p.client = nil
		p.stateMu.Unlock()
		break
	}

	client.close()
	return nil
}
