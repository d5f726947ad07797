package providers

import (
	"context"
	"fmt"
	"sort"
	"time"
)

var seedUpdatedAt = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// SeedRecords is the built-in provider catalogue used by the static source and the seed command.
var SeedRecords = []Provider{
	{
		ID:            1,
		Slug:          "nordvpn",
		Name:          "NordVPN",
		OverallRating: 9.6,
		AffiliateURL:  "https://go.nordvpn.net/aff_c?offer_id=15&aff_id=vpnguide",
		WebsiteURL:    "https://nordvpn.com",
		LogoURL:       "/assets/logos/nordvpn.svg",
		PriceFrom:     "$3.39/mo",
		UpdatedAt:     seedUpdatedAt,
	},
	{
		ID:            2,
		Slug:          "expressvpn",
		Name:          "ExpressVPN",
		OverallRating: 9.4,
		AffiliateURL:  "https://www.expressvpn.com/order?a_aid=vpnguide",
		WebsiteURL:    "https://www.expressvpn.com",
		LogoURL:       "/assets/logos/expressvpn.svg",
		PriceFrom:     "$4.99/mo",
		UpdatedAt:     seedUpdatedAt,
	},
	{
		ID:            3,
		Slug:          "surfshark",
		Name:          "Surfshark",
		OverallRating: 9.2,
		AffiliateURL:  "https://get.surfshark.net/aff_c?offer_id=926&aff_id=vpnguide",
		WebsiteURL:    "https://surfshark.com",
		LogoURL:       "/assets/logos/surfshark.svg",
		PriceFrom:     "$2.19/mo",
		UpdatedAt:     seedUpdatedAt,
	},
	{
		ID:            4,
		Slug:          "protonvpn",
		Name:          "Proton VPN",
		OverallRating: 8.9,
		AffiliateURL:  "https://protonvpn.com/pricing?ref=vpnguide",
		WebsiteURL:    "https://protonvpn.com",
		LogoURL:       "/assets/logos/protonvpn.svg",
		PriceFrom:     "$4.49/mo",
		UpdatedAt:     seedUpdatedAt,
	},
	{
		ID:            5,
		Slug:          "cyberghost",
		Name:          "CyberGhost",
		OverallRating: 8.5,
		AffiliateURL:  "https://www.cyberghostvpn.com/buy?aff=vpnguide",
		WebsiteURL:    "https://www.cyberghostvpn.com",
		LogoURL:       "/assets/logos/cyberghost.svg",
		PriceFrom:     "$2.19/mo",
		UpdatedAt:     seedUpdatedAt,
	},
	{
		ID:            6,
		Slug:          "privateinternetaccess",
		Name:          "Private Internet Access",
		OverallRating: 8.3,
		AffiliateURL:  "https://www.privateinternetaccess.com/buy-vpn-online?ref=vpnguide",
		WebsiteURL:    "https://www.privateinternetaccess.com",
		LogoURL:       "/assets/logos/pia.svg",
		PriceFrom:     "$2.03/mo",
		UpdatedAt:     seedUpdatedAt,
	},
}

// StaticRepository serves providers from memory.
type StaticRepository struct {
	bySlug map[string]Provider
}

// NewStaticRepository indexes records by slug. A nil slice uses SeedRecords.
func NewStaticRepository(records []Provider) *StaticRepository {
	if records == nil {
		records = SeedRecords
	}
	idx := make(map[string]Provider, len(records))
	for _, p := range records {
		idx[NormalizeSlug(p.Slug)] = p
	}
	return &StaticRepository{bySlug: idx}
}

func (r *StaticRepository) GetBySlug(ctx context.Context, slug string) (Provider, error) {
	if err := ctx.Err(); err != nil {
		return Provider{}, err
	}
	p, ok := r.bySlug[NormalizeSlug(slug)]
	if !ok {
		return Provider{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return p, nil
}

func (r *StaticRepository) List(ctx context.Context) ([]Provider, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Provider, 0, len(r.bySlug))
	for _, p := range r.bySlug {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OverallRating == out[j].OverallRating {
			return out[i].Slug < out[j].Slug
		}
		return out[i].OverallRating > out[j].OverallRating
	})
	return out, nil
}
