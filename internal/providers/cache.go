package providers

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedRepository is a read-through cache in front of another Repository. Misses are not cached.
type CachedRepository struct {
	next  Repository
	items *expirable.LRU[string, Provider]
}

// NewCachedRepository wraps next with an LRU whose entries expire after ttl.
// It returns next unchanged when ttl or size is not positive.
func NewCachedRepository(next Repository, size int, ttl time.Duration) Repository {
	if ttl <= 0 || size <= 0 {
		return next
	}
	return &CachedRepository{
		next:  next,
		items: expirable.NewLRU[string, Provider](size, nil, ttl),
	}
}

func (c *CachedRepository) GetBySlug(ctx context.Context, slug string) (Provider, error) {
	key := NormalizeSlug(slug)
	if p, ok := c.items.Get(key); ok {
		return p, nil
	}
	p, err := c.next.GetBySlug(ctx, slug)
	if err != nil {
		return Provider{}, err
	}
	c.items.Add(key, p)
	return p, nil
}

func (c *CachedRepository) List(ctx context.Context) ([]Provider, error) {
	return c.next.List(ctx)
}
