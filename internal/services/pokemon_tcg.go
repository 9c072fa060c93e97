package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/codyseavey/card-price-lens/internal/metrics"
	"github.com/codyseavey/card-price-lens/internal/models"
)

const pokemonTCGBaseURL = "https://api.pokemontcg.io/v2"

// SearchOptions narrows a catalog query
type SearchOptions struct {
	OrderBy  string // e.g. "-set.releaseDate"
	PageSize int
}

// CatalogSearcher finds catalog cards for a pokemontcg.io query string
type CatalogSearcher interface {
	SearchCards(ctx context.Context, query string, opts SearchOptions) ([]models.CatalogCard, error)
}

type PokemonTCGService struct {
	client  *http.Client
	apiKey  string
	baseURL string
}

func NewPokemonTCGService(apiKey string, timeout time.Duration) *PokemonTCGService {
	return &PokemonTCGService{
		client: &http.Client{
			Timeout: timeout,
		},
		apiKey:  apiKey,
		baseURL: pokemonTCGBaseURL,
	}
}

type pokemonSearchResponse struct {
	Data       []pokemonCard `json:"data"`
	TotalCount int           `json:"totalCount"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	Count      int           `json:"count"`
}

type pokemonCard struct {
	TCGPlayer *pokemonTCGPrice `json:"tcgplayer"`
	Set       pokemonSet       `json:"set"`
	Images    pokemonImages    `json:"images"`
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Number    string           `json:"number"`
	Rarity    string           `json:"rarity"`
}

type pokemonSet struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"releaseDate"`
}

type pokemonImages struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

type pokemonTCGPrice struct {
	Prices    map[string]pokemonPriceSet `json:"prices"`
	URL       string                     `json:"url"`
	UpdatedAt string                     `json:"updatedAt"`
}

// Pointers distinguish a missing figure from a zero one
type pokemonPriceSet struct {
	Low    *float64 `json:"low"`
	Mid    *float64 `json:"mid"`
	High   *float64 `json:"high"`
	Market *float64 `json:"market"`
}

// SearchCards runs a raw pokemontcg.io query (e.g. `name:"Pikachu VMAX"`) and
// returns the validated results in API order.
func (s *PokemonTCGService) SearchCards(ctx context.Context, query string, opts SearchOptions) ([]models.CatalogCard, error) {
	params := url.Values{}
	params.Set("q", query)
	if opts.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.OrderBy != "" {
		params.Set("orderBy", opts.OrderBy)
	}
	reqURL := fmt.Sprintf("%s/cards?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	metrics.CatalogRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to search pokemon tcg: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.CatalogRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("pokemon tcg API returned status %d", resp.StatusCode)
	}

	var searchResp pokemonSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		metrics.CatalogRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to decode pokemon tcg response: %w", err)
	}

	cards := make([]models.CatalogCard, 0, len(searchResp.Data))
	for _, pc := range searchResp.Data {
		card, ok := convertToCatalogCard(pc)
		if !ok {
			log.Printf("Skipping malformed catalog record %q (%q)", pc.ID, pc.Name)
			continue
		}
		cards = append(cards, card)
	}

	if len(cards) == 0 {
		metrics.CatalogRequestsTotal.WithLabelValues("empty").Inc()
	} else {
		metrics.CatalogRequestsTotal.WithLabelValues("success").Inc()
	}
	return cards, nil
}

// convertToCatalogCard maps a raw record onto the catalog model and validates it
func convertToCatalogCard(pc pokemonCard) (models.CatalogCard, bool) {
	card := models.CatalogCard{
		ID:     pc.ID,
		Name:   pc.Name,
		Number: pc.Number,
		Rarity: pc.Rarity,
		Set: models.CardSet{
			ID:          pc.Set.ID,
			Name:        pc.Set.Name,
			ReleaseDate: pc.Set.ReleaseDate,
		},
		Images: models.CardImages{
			Small: pc.Images.Small,
			Large: pc.Images.Large,
		},
	}

	if pc.TCGPlayer != nil {
		info := &models.TCGPlayerInfo{
			URL:       pc.TCGPlayer.URL,
			UpdatedAt: pc.TCGPlayer.UpdatedAt,
		}
		if len(pc.TCGPlayer.Prices) > 0 {
			info.Prices = make(map[models.Variant]models.VariantPrice, len(pc.TCGPlayer.Prices))
			for key, ps := range pc.TCGPlayer.Prices {
				info.Prices[models.Variant(key)] = models.VariantPrice{
					Low:    ps.Low,
					Mid:    ps.Mid,
					High:   ps.High,
					Market: ps.Market,
				}
			}
		}
		card.TCGPlayer = info
	}

	return card.Sanitize()
}
