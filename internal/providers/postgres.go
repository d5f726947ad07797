package providers

import (
	"context"
	"fmt"

	"finitefield.org/vpnguide-web/internal/platform/database"
)

const selectColumns = `id, slug, name, overall_rating::float8 AS overall_rating, affiliate_url,
	website_url, logo_url, price_from, updated_at`

// PostgresRepository reads providers from the vpn_providers table.
type PostgresRepository struct {
	db *database.Provider
}

// NewPostgresRepository binds the repository to the shared database provider.
func NewPostgresRepository(db *database.Provider) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetBySlug returns the provider for slug, or ErrNotFound. Driver errors are returned as-is.
func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (Provider, error) {
	client, err := r.db.Client(ctx)
	if err != nil {
		return Provider{}, err
	}
	rows, err := database.Query[Provider](ctx, client,
		`SELECT `+selectColumns+` FROM vpn_providers WHERE slug = $1 LIMIT 1`,
		NormalizeSlug(slug),
	)
	if err != nil {
		return Provider{}, err
	}
	if len(rows) == 0 {
		return Provider{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return rows[0], nil
}

// List returns every provider ordered by rating.
func (r *PostgresRepository) List(ctx context.Context) ([]Provider, error) {
	client, err := r.db.Client(ctx)
	if err != nil {
		return nil, err
	}
	return database.Query[Provider](ctx, client,
		`SELECT `+selectColumns+` FROM vpn_providers ORDER BY overall_rating DESC, slug`,
	)
}

// Upsert writes records keyed by slug.
func (r *PostgresRepository) Upsert(ctx context.Context, records []Provider) error {
	client, err := r.db.Client(ctx)
	if err != nil {
		return err
	}
	for _, p := range records {
		_, err := client.SQL(ctx, `INSERT INTO vpn_providers
			(slug, name, overall_rating, affiliate_url, website_url, logo_url, price_from, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, now())
			ON CONFLICT (slug) DO UPDATE SET
				name = EXCLUDED.name,
				overall_rating = EXCLUDED.overall_rating,
				affiliate_url = EXCLUDED.affiliate_url,
				website_url = EXCLUDED.website_url,
				logo_url = EXCLUDED.logo_url,
				price_from = EXCLUDED.price_from,
				updated_at = now()`,
			NormalizeSlug(p.Slug), p.Name, p.OverallRating, p.AffiliateURL, p.WebsiteURL, p.LogoURL, p.PriceFrom,
		)
		if err != nil {
			return fmt.Errorf("providers: upsert %s: %w", p.Slug, err)
		}
	}
	return nil
}
