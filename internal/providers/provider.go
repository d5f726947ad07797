// Package providers reads VPN provider records and resolves the fixed pick lists used by pages.
package providers

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when no provider exists for a slug.
var ErrNotFound = errors.New("providers: not found")

// Provider is a VPN provider record. The site only reads these; they are maintained elsewhere.
type Provider struct {
	ID            int64     `json:"id"`
	Slug          string    `json:"slug"`
	Name          string    `json:"name"`
	OverallRating float64   `json:"overall_rating"`
	AffiliateURL  string    `json:"affiliate_url"`
	WebsiteURL    string    `json:"website_url"`
	LogoURL       string    `json:"logo_url"`
	PriceFrom     string    `json:"price_from"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Repository looks up providers by slug.
type Repository interface {
	GetBySlug(ctx context.Context, slug string) (Provider, error)
	List(ctx context.Context) ([]Provider, error)
}

// NormalizeSlug lowercases and trims a slug.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
