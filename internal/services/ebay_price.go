package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/codyseavey/card-price-lens/internal/metrics"
)

const (
	ebayPriceHost    = "ebay-average-selling-price.p.rapidapi.com"
	ebayPriceBaseURL = "https://" + ebayPriceHost
)

// PriceFallback supplies a price when the catalog record has none
type PriceFallback interface {
	AveragePrice(ctx context.Context, cardName string) (float64, error)
}

// EbayPriceService looks up average eBay selling prices through RapidAPI
type EbayPriceService struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

func NewEbayPriceService(apiKey string, timeout time.Duration) *EbayPriceService {
	return &EbayPriceService{
		client: &http.Client{
			Timeout: timeout,
		},
		apiKey:  apiKey,
		baseURL: ebayPriceBaseURL,
	}
}

// IsConfigured returns true when a RapidAPI key is set
func (s *EbayPriceService) IsConfigured() bool {
	return s != nil && s.apiKey != ""
}

type ebayPriceRequest struct {
	Keywords string `json:"keywords"`
	Site     string `json:"site"`
}

// averagePrice is reported as a number or a numeric string
type ebayPriceResponse struct {
	AveragePrice json.Number `json:"averagePrice"`
}

// AveragePrice returns the average selling price for "<name> pokemon card".
// Zero with a nil error means eBay had no figure.
func (s *EbayPriceService) AveragePrice(ctx context.Context, cardName string) (float64, error) {
	if !s.IsConfigured() {
		return 0, fmt.Errorf("ebay price lookup is not configured")
	}

	payload, err := json.Marshal(ebayPriceRequest{
		Keywords: cardName + " pokemon card",
		Site:     "US",
	})
	if err != nil {
		return 0, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/getAveragePrices", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-RapidAPI-Key", s.apiKey)
	req.Header.Set("X-RapidAPI-Host", ebayPriceHost)

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.FallbackPriceRequestsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("ebay price request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.FallbackPriceRequestsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("eBay API request failed: %d", resp.StatusCode)
	}

	var body ebayPriceResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		metrics.FallbackPriceRequestsTotal.WithLabelValues("error").Inc()
		return 0, fmt.Errorf("failed to decode eBay response: %w", err)
	}

	if body.AveragePrice == "" {
		metrics.FallbackPriceRequestsTotal.WithLabelValues("empty").Inc()
		return 0, nil
	}
	price, err := strconv.ParseFloat(body.AveragePrice.String(), 64)
	if err != nil || price < 0 {
		metrics.FallbackPriceRequestsTotal.WithLabelValues("empty").Inc()
		return 0, nil
	}

	metrics.FallbackPriceRequestsTotal.WithLabelValues("success").Inc()
	return price, nil
}
