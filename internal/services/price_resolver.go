package services

import (
	"github.com/codyseavey/card-price-lens/internal/models"
)

// ResolveMarketPrice returns the card's current market price following the
// variant precedence holofoil, reverse holofoil, normal, unlimited, 1st edition.
// A zero market price counts as unreported. The boolean is false when no
// variant reports a market price; callers decide on a fallback.
func ResolveMarketPrice(card models.CatalogCard) (float64, bool) {
	for _, variant := range models.PricePrecedence() {
		if price, ok := card.MarketPrice(variant); ok && price > 0 {
			return price, true
		}
	}
	return 0, false
}
