package models

import (
	"encoding/json"
	"time"
)

const dateLayout = "2006-01-02"

// PricePoint is one weekly sample in a trend series
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// MarshalJSON renders the date at day granularity
func (p PricePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  string  `json:"date"`
		Price float64 `json:"price"`
	}{
		Date:  p.Date.Format(dateLayout),
		Price: p.Price,
	})
}

func (p *PricePoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date  string  `json:"date"`
		Price float64 `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := time.Parse(dateLayout, raw.Date)
	if err != nil {
		return err
	}
	p.Date = date
	p.Price = raw.Price
	return nil
}

// TrendSeries is a synthetic price history, oldest point first.
// PercentChange is computed from StartPrice and CurrentPrice, not from the
// noised History endpoints.
type TrendSeries struct {
	History       []PricePoint `json:"history"`
	PercentChange float64      `json:"percent_change"`
	StartPrice    float64      `json:"start_price"`
	CurrentPrice  float64      `json:"current_price"`
}

// PriceSource records where a quoted price came from
type PriceSource string

const (
	PriceSourceTCGPlayer PriceSource = "TCGPlayer"
	PriceSourceEbay      PriceSource = "eBay"
	PriceSourceEstimated PriceSource = "Estimated"
)

// PriceQuote is the point-in-time price plus its display trend
type PriceQuote struct {
	Trend   TrendSeries `json:"trend"`
	Source  PriceSource `json:"source"`
	Current float64     `json:"current"`
}
