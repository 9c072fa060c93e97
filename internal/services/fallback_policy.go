package services

import (
	"context"
	"log"

	"github.com/codyseavey/card-price-lens/internal/models"
)

const (
	// DefaultFallbackPrice is quoted when no source has a price for the card
	DefaultFallbackPrice = 10.00

	popularCardsQuery    = "tcgplayer.prices.holofoil.market:[1 TO *]"
	popularCardsPageSize = 50
	popularCardsPickFrom = 10
)

// FallbackPolicy decides what to show when identification or pricing comes
// up empty. It is only consulted by the analyzer, never by the parser or ranker.
type FallbackPolicy struct {
	rand         RandSource
	DefaultPrice float64
}

// NewFallbackPolicy creates the policy. A nil source uses a clock-seeded one.
func NewFallbackPolicy(src RandSource) *FallbackPolicy {
	if src == nil {
		src = NewLockedRand()
	}
	return &FallbackPolicy{
		rand:         src,
		DefaultPrice: DefaultFallbackPrice,
	}
}

// PopularCard picks one of the ten most recently released cards that have a
// holofoil market price of at least $1
func (p *FallbackPolicy) PopularCard(ctx context.Context, catalog CatalogSearcher) (models.CatalogCard, bool) {
	cards, err := catalog.SearchCards(ctx, popularCardsQuery, SearchOptions{
		PageSize: popularCardsPageSize,
		OrderBy:  "-set.releaseDate",
	})
	if err != nil {
		log.Printf("Popular card fallback search failed: %v", err)
		return models.CatalogCard{}, false
	}
	if len(cards) == 0 {
		return models.CatalogCard{}, false
	}

	n := min(popularCardsPickFrom, len(cards))
	idx := int(p.rand.Float64() * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return cards[idx], true
}

// DemoCard is the fixed card shown when the catalog cannot be reached at all
func (p *FallbackPolicy) DemoCard() models.CatalogCard {
	return models.CatalogCard{
		ID:     "demo-card",
		Name:   "Pikachu VMAX",
		Number: "044",
		Rarity: "Rare Holo VMAX",
		Set:    models.CardSet{Name: "Vivid Voltage"},
		TCGPlayer: &models.TCGPlayerInfo{
			URL: "https://www.tcgplayer.com",
			Prices: map[models.Variant]models.VariantPrice{
				models.VariantHolofoil: {Market: models.Float64Ptr(12.99)},
			},
		},
	}
}
