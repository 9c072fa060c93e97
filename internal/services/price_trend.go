package services

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/codyseavey/card-price-lens/internal/models"
)

const (
	// TrendPoints is the number of weekly samples in a synthesized trend (12 weeks)
	TrendPoints = 12

	// MinTrendPrice is the floor for every synthesized price
	MinTrendPrice = 0.01

	// MaxTrendPrice caps the input so the start price and noise stay finite
	MaxTrendPrice = 1e9

	maxTrendSwingPercent = 20.0 // change over the whole window, +/-
	trendNoiseFraction   = 0.05 // per-point noise as a fraction of current price, +/-
)

// RandSource supplies uniform floats in [0, 1). *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

// lockedRand makes a rand.Rand safe to share between requests
type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

// NewLockedRand returns a concurrency-safe source seeded from the clock
func NewLockedRand() RandSource {
	return &lockedRand{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// TrendSynthesizer fabricates a plausible display history for a single
// current price. It is not market data.
type TrendSynthesizer struct {
	rand RandSource
	now  func() time.Time
}

// NewTrendSynthesizer creates a synthesizer. A nil source uses a clock-seeded
// locked source and a nil clock uses time.Now.
func NewTrendSynthesizer(src RandSource, now func() time.Time) *TrendSynthesizer {
	if src == nil {
		src = NewLockedRand()
	}
	if now == nil {
		now = time.Now
	}
	return &TrendSynthesizer{rand: src, now: now}
}

// Synthesize builds a 12-week series ending at currentPrice, oldest first.
// The price is clamped to [MinTrendPrice, MaxTrendPrice] first.
// The overall change is drawn from [-20%, +20%] and each point gets up to
// +/-5% of the current price as noise. PercentChange reflects the un-noised
// endpoints, so it will not exactly match History[0] and History[11].
func (s *TrendSynthesizer) Synthesize(currentPrice float64) models.TrendSeries {
	price := currentPrice
	switch {
	case math.IsNaN(price) || price < MinTrendPrice:
		price = MinTrendPrice
	case price > MaxTrendPrice:
		price = MaxTrendPrice
	}

	changePercent := s.uniform(-maxTrendSwingPercent, maxTrendSwingPercent)
	startPrice := price / (1 + changePercent/100)

	today := truncateToDay(s.now())
	history := make([]models.PricePoint, TrendPoints)
	for i := 0; i < TrendPoints; i++ {
		progress := float64(i) / float64(TrendPoints-1)
		base := startPrice + (price-startPrice)*progress
		noise := s.uniform(-price*trendNoiseFraction, price*trendNoiseFraction)

		history[i] = models.PricePoint{
			Date:  today.AddDate(0, 0, -7*(TrendPoints-i)),
			Price: math.Max(MinTrendPrice, base+noise),
		}
	}

	return models.TrendSeries{
		History:       history,
		PercentChange: (price - startPrice) / startPrice * 100,
		StartPrice:    startPrice,
		CurrentPrice:  price,
	}
}

// uniform maps the source onto [lo, hi]
func (s *TrendSynthesizer) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rand.Float64()
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
