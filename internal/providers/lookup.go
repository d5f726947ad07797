package providers

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finitefield.org/vpnguide-web/internal/platform/observability"
	"finitefield.org/vpnguide-web/internal/platform/requestctx"
)

var tracer = observability.Tracer("finitefield.org/vpnguide-web/internal/providers")

// Lookup is the outcome of resolving one slug: either a found provider or a missing slug.
type Lookup struct {
	slug     string
	provider Provider
	found    bool
}

// Found wraps a resolved provider.
func Found(p Provider) Lookup {
	return Lookup{slug: p.Slug, provider: p, found: true}
}

// Missing records a slug that had no provider.
func Missing(slug string) Lookup {
	return Lookup{slug: slug}
}

// Slug returns the requested slug.
func (l Lookup) Slug() string { return l.slug }

// IsFound reports whether a provider was resolved.
func (l Lookup) IsFound() bool { return l.found }

// Provider returns the provider and true, or the zero value and false for a missing slug.
func (l Lookup) Provider() (Provider, bool) {
	return l.provider, l.found
}

// Resolver fetches pick lists from a Repository.
type Resolver struct {
	repo    Repository
	metrics *observability.Metrics
}

// NewResolver builds a Resolver. metrics may be nil.
func NewResolver(repo Repository, metrics *observability.Metrics) *Resolver {
	return &Resolver{repo: repo, metrics: metrics}
}

// Resolve fetches every slug concurrently and returns one Lookup per slug in input order.
// ErrNotFound becomes Missing; any other error fails the whole call and cancels the
// remaining lookups.
func (r *Resolver) Resolve(ctx context.Context, slugs []string) ([]Lookup, error) {
	ctx, span := tracer.Start(ctx, "providers.Resolve")
	defer span.End()
	span.SetAttributes(attribute.StringSlice("vpn.slugs", slugs))

	lookups := make([]Lookup, len(slugs))

	// The first hard error cancels the lookups still in flight.
	g, gctx := errgroup.WithContext(ctx)
	for i, slug := range slugs {
		g.Go(func() error {
			p, err := r.repo.GetBySlug(gctx, slug)
			switch {
			case err == nil:
				lookups[i] = Found(p)
				r.metrics.ObserveProviderLookup(observability.LookupFound)
				return nil
			case errors.Is(err, ErrNotFound):
				lookups[i] = Missing(slug)
				r.metrics.ObserveProviderLookup(observability.LookupMissing)
				return nil
			case gctx.Err() != nil && errors.Is(err, gctx.Err()):
				return err
			default:
				r.metrics.ObserveProviderLookup(observability.LookupError)
				requestctx.Logger(ctx).Error("provider lookup failed", zap.String("slug", slug), zap.Error(err))
				return err
			}
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider lookup failed")
		return nil, err
	}

	for _, l := range lookups {
		if !l.found {
			requestctx.Logger(ctx).Warn("provider missing", zap.String("slug", l.slug))
		}
	}
	return lookups, nil
}

// Resolve is Resolver.Resolve without metrics.
func Resolve(ctx context.Context, repo Repository, slugs []string) ([]Lookup, error) {
	return NewResolver(repo, nil).Resolve(ctx, slugs)
}
