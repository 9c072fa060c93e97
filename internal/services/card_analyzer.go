package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/codyseavey/card-price-lens/internal/metrics"
	"github.com/codyseavey/card-price-lens/internal/models"
)

// CardAnalyzer runs the identify-and-price pipeline:
// recognize text, parse it, search the catalog, rank, resolve a price and
// synthesize a trend. Fallbacks are applied here and nowhere else.
type CardAnalyzer struct {
	recognizer    TextRecognizer
	catalog       CatalogSearcher
	priceFallback PriceFallback
	trend         *TrendSynthesizer
	fallback      *FallbackPolicy
	now           func() time.Time
}

// NewCardAnalyzer wires the pipeline. recognizer and priceFallback may be nil:
// without a recognizer only text analysis works, without a price fallback
// cards lacking catalog prices get the default price.
func NewCardAnalyzer(recognizer TextRecognizer, catalog CatalogSearcher, priceFallback PriceFallback, trend *TrendSynthesizer, fallback *FallbackPolicy) *CardAnalyzer {
	if trend == nil {
		trend = NewTrendSynthesizer(nil, nil)
	}
	if fallback == nil {
		fallback = NewFallbackPolicy(nil)
	}
	return &CardAnalyzer{
		recognizer:    recognizer,
		catalog:       catalog,
		priceFallback: priceFallback,
		trend:         trend,
		fallback:      fallback,
		now:           time.Now,
	}
}

// Trend exposes the synthesizer for standalone trend requests
func (a *CardAnalyzer) Trend() *TrendSynthesizer {
	return a.trend
}

// RecognizerName names the configured OCR engine, or "" when there is none
func (a *CardAnalyzer) RecognizerName() string {
	if a.recognizer == nil {
		return ""
	}
	return a.recognizer.Name()
}

// AnalyzeImage recognizes the card text and analyzes it. It returns
// ErrNoTextExtracted when the recognizer fails or finds nothing.
func (a *CardAnalyzer) AnalyzeImage(ctx context.Context, image []byte) (*models.CardAnalysis, error) {
	if a.recognizer == nil {
		return nil, fmt.Errorf("text recognition is not configured")
	}

	ocr, err := a.recognizer.Recognize(ctx, image)
	if err != nil {
		log.Printf("OCR failed (%s): %v", a.recognizer.Name(), err)
		return nil, fmt.Errorf("%w: %v", ErrNoTextExtracted, err)
	}
	if !ocr.Success || strings.TrimSpace(ocr.RawText) == "" {
		log.Printf("OCR returned no text (%s): %s", a.recognizer.Name(), ocr.Error)
		return nil, ErrNoTextExtracted
	}

	analysis, err := a.AnalyzeText(ctx, ocr.RawText)
	if err != nil {
		return nil, err
	}
	analysis.OCREngine = ocr.Engine
	analysis.OCRConfidence = ocr.Confidence
	return analysis, nil
}

// AnalyzeText identifies and prices a card from already recognized text.
// It always produces a result; fallback cards and prices are flagged.
func (a *CardAnalyzer) AnalyzeText(ctx context.Context, rawText string) (*models.CardAnalysis, error) {
	guess := ParseCardText(rawText)
	if guess.IsEmpty() {
		log.Printf("No card fields recognized in %d bytes of text", len(rawText))
	}

	var searchName string
	if name := ExtractCardName(rawText); name != nil {
		searchName = CleanSearchName(*name)
	}

	match, kind := a.findCard(ctx, searchName)
	analysis := a.buildAnalysis(ctx, match, kind, guess)
	analysis.RawText = rawText
	return analysis, nil
}

// SearchCard looks a card up by a typed name, optionally narrowed to a set
// name. Unlike AnalyzeText it never substitutes a fallback card: it returns
// ErrNoCandidatesFound when the catalog has no match.
func (a *CardAnalyzer) SearchCard(ctx context.Context, name, setName string) (*models.CardAnalysis, error) {
	clean := CleanSearchName(name)
	if clean == "" {
		return nil, fmt.Errorf("%w: empty card name", ErrNoCandidatesFound)
	}

	match, err := a.searchCatalog(ctx, clean, cleanSetName(setName))
	if err != nil {
		return nil, err
	}

	return a.buildAnalysis(ctx, match, models.FallbackNone, models.CardGuess{Name: &clean}), nil
}

func (a *CardAnalyzer) buildAnalysis(ctx context.Context, match models.ScoredCandidate, kind models.FallbackKind, guess models.CardGuess) *models.CardAnalysis {
	card := match.Card

	analysis := &models.CardAnalysis{
		ID:         uuid.New(),
		AnalyzedAt: a.now(),
		Guess:      guess,
		CardID:     card.ID,
		Name:       card.Name,
		Set:        card.SetName(),
		Number:     card.Number,
		Rarity:     card.Rarity,
		Price:      a.quotePrice(ctx, card),
		Links:      buildLinks(card),
		Fallback:   kind,
		MatchScore: match.Score,
	}

	fallbackLabel := string(kind)
	if fallbackLabel == "" {
		fallbackLabel = "none"
	}
	metrics.AnalysesTotal.WithLabelValues(fallbackLabel).Inc()

	return analysis
}

// findCard searches by name and, if that comes up empty, lets the fallback
// policy decide
func (a *CardAnalyzer) findCard(ctx context.Context, name string) (models.ScoredCandidate, models.FallbackKind) {
	if name != "" {
		match, err := a.searchCatalog(ctx, name, "")
		if err == nil {
			return match, models.FallbackNone
		}
		log.Printf("Catalog search for %q: %v", name, err)
	}

	if card, ok := a.fallback.PopularCard(ctx, a.catalog); ok {
		log.Printf("Showing popular card %q as fallback", card.Name)
		return models.ScoredCandidate{Card: card}, models.FallbackPopular
	}

	log.Printf("Catalog unavailable, showing demo card")
	return models.ScoredCandidate{Card: a.fallback.DemoCard()}, models.FallbackDemo
}

// searchCatalog runs the exact name and first-word prefix searches
// concurrently. An exact hit wins (preferring a card with prices); otherwise
// the prefix results are ranked. setName, when not empty, narrows both
// queries. It returns ErrNoCandidatesFound when both searches succeed empty.
func (a *CardAnalyzer) searchCatalog(ctx context.Context, name, setName string) (models.ScoredCandidate, error) {
	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var setFilter string
	if setName != "" {
		setFilter = fmt.Sprintf(` set.name:"%s"`, setName)
	}
	exactQuery := fmt.Sprintf(`name:"%s"`, name) + setFilter
	prefixQuery := fmt.Sprintf("name:%s*", strings.Fields(name)[0]) + setFilter

	exactF := Async(searchCtx, func(ctx context.Context) ([]models.CatalogCard, error) {
		return a.catalog.SearchCards(ctx, exactQuery, SearchOptions{})
	})
	prefixF := Async(searchCtx, func(ctx context.Context) ([]models.CatalogCard, error) {
		return a.catalog.SearchCards(ctx, prefixQuery, SearchOptions{})
	})

	exact := Await(searchCtx, exactF)
	if exact.Err == nil && len(exact.Value) > 0 {
		card := preferPriced(exact.Value)
		score := ScoreCandidate(card, name)
		metrics.MatchScore.Observe(float64(score))
		return models.ScoredCandidate{Card: card, Score: score}, nil
	}

	prefix := Await(searchCtx, prefixF)
	if prefix.Err == nil {
		if best, ok := RankCandidates(prefix.Value, name); ok {
			metrics.MatchScore.Observe(float64(best.Score))
			return best, nil
		}
	}

	if err := errors.Join(exact.Err, prefix.Err); err != nil {
		return models.ScoredCandidate{}, fmt.Errorf("catalog search failed: %w", err)
	}
	return models.ScoredCandidate{}, ErrNoCandidatesFound
}

// quotePrice resolves the current price: catalog market price, then the
// external fallback, then the policy's default
func (a *CardAnalyzer) quotePrice(ctx context.Context, card models.CatalogCard) models.PriceQuote {
	price, source, err := a.resolvePrice(ctx, card)
	if err != nil {
		log.Printf("Pricing %q: %v, using default %.2f", card.Name, err, a.fallback.DefaultPrice)
		price = a.fallback.DefaultPrice
		source = models.PriceSourceEstimated
	}
	metrics.PriceSourceTotal.WithLabelValues(string(source)).Inc()

	return models.PriceQuote{
		Current: price,
		Source:  source,
		Trend:   a.trend.Synthesize(price),
	}
}

func (a *CardAnalyzer) resolvePrice(ctx context.Context, card models.CatalogCard) (float64, models.PriceSource, error) {
	if price, ok := ResolveMarketPrice(card); ok {
		return price, models.PriceSourceTCGPlayer, nil
	}

	if a.priceFallback == nil {
		return 0, "", ErrNoPriceAvailable
	}

	price, err := a.priceFallback.AveragePrice(ctx, card.Name)
	if err != nil {
		return 0, "", errors.Join(ErrNoPriceAvailable, err)
	}
	if price <= 0 {
		return 0, "", ErrNoPriceAvailable
	}
	return price, models.PriceSourceEbay, nil
}

// preferPriced returns the first card with pricing data, or the first card
func preferPriced(cards []models.CatalogCard) models.CatalogCard {
	for _, c := range cards {
		if c.HasPricing() {
			return c
		}
	}
	return cards[0]
}

// cleanSetName drops characters that would break out of a quoted query term
func cleanSetName(name string) string {
	return strings.TrimSpace(strings.NewReplacer(`"`, "", `\`, "").Replace(name))
}

func buildLinks(card models.CatalogCard) models.CardLinks {
	q := url.Values{}
	q.Set("q", card.Name)
	tcgplayer := "https://www.tcgplayer.com/search/pokemon/product?" + q.Encode()
	if card.TCGPlayer != nil && card.TCGPlayer.URL != "" {
		tcgplayer = card.TCGPlayer.URL
	}

	cm := url.Values{}
	cm.Set("searchString", card.Name)
	return models.CardLinks{
		TCGPlayer:  tcgplayer,
		Cardmarket: "https://www.cardmarket.com/en/Pokemon/Products/Search?" + cm.Encode(),
	}
}
