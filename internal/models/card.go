package models

import "strings"

// CatalogCard is one card record from the Pokemon TCG catalog.
// Records are validated when decoded so everything downstream can read them
// without nil checks beyond TCGPlayer.
type CatalogCard struct {
	TCGPlayer *TCGPlayerInfo `json:"tcgplayer,omitempty"`
	Set       CardSet        `json:"set"`
	Images    CardImages     `json:"images"`
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Number    string         `json:"number"`
	Rarity    string         `json:"rarity"`
}

type CardSet struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"releaseDate,omitempty"`
}

type CardImages struct {
	Small string `json:"small,omitempty"`
	Large string `json:"large,omitempty"`
}

// TCGPlayerInfo holds the marketplace link and per-variant prices
type TCGPlayerInfo struct {
	Prices    map[Variant]VariantPrice `json:"prices,omitempty"`
	URL       string                   `json:"url,omitempty"`
	UpdatedAt string                   `json:"updatedAt,omitempty"`
}

// VariantPrice is a price quote for one print/finish. Nil means the
// catalog did not report that figure.
type VariantPrice struct {
	Low    *float64 `json:"low,omitempty"`
	Mid    *float64 `json:"mid,omitempty"`
	High   *float64 `json:"high,omitempty"`
	Market *float64 `json:"market,omitempty"`
}

// HasPricing reports whether the card carries any non-empty pricing data
func (c CatalogCard) HasPricing() bool {
	return c.TCGPlayer != nil && len(c.TCGPlayer.Prices) > 0
}

// MarketPrice returns the market price for a variant, if present
func (c CatalogCard) MarketPrice(v Variant) (float64, bool) {
	if c.TCGPlayer == nil {
		return 0, false
	}
	p, ok := c.TCGPlayer.Prices[v]
	if !ok || p.Market == nil {
		return 0, false
	}
	return *p.Market, true
}

// SetName returns the set display name, or "Unknown Set" when missing
func (c CatalogCard) SetName() string {
	if c.Set.Name == "" {
		return "Unknown Set"
	}
	return c.Set.Name
}

// Sanitize validates a record that came from outside the service. Records
// without an id or name are rejected; unknown variants and negative prices
// are dropped. The receiver's price map is not modified.
func (c CatalogCard) Sanitize() (CatalogCard, bool) {
	if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.Name) == "" {
		return CatalogCard{}, false
	}
	if c.TCGPlayer == nil {
		return c, true
	}

	info := *c.TCGPlayer
	info.Prices = nil
	for variant, p := range c.TCGPlayer.Prices {
		if !variant.IsKnown() {
			continue
		}
		if info.Prices == nil {
			info.Prices = make(map[Variant]VariantPrice)
		}
		info.Prices[variant] = VariantPrice{
			Low:    nonNegative(p.Low),
			Mid:    nonNegative(p.Mid),
			High:   nonNegative(p.High),
			Market: nonNegative(p.Market),
		}
	}
	c.TCGPlayer = &info
	return c, true
}

func nonNegative(v *float64) *float64 {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}

// Float64Ptr is a small helper for building optional price fields
func Float64Ptr(v float64) *float64 {
	return &v
}
