package services

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/codyseavey/card-price-lens/internal/models"
)

// mockCatalog answers queries from a fixed table
type mockCatalog struct {
	mu      sync.Mutex
	results map[string][]models.CatalogCard
	err     error
	queries []string
	options []SearchOptions
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{results: make(map[string][]models.CatalogCard)}
}

func (m *mockCatalog) SearchCards(_ context.Context, query string, opts SearchOptions) ([]models.CatalogCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	m.options = append(m.options, opts)
	if m.err != nil {
		return nil, m.err
	}
	return m.results[query], nil
}

func (m *mockCatalog) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

type mockRecognizer struct {
	result *models.OCRResult
	err    error
}

func (m *mockRecognizer) Recognize(context.Context, []byte) (*models.OCRResult, error) {
	return m.result, m.err
}

func (m *mockRecognizer) Name() string { return "mock" }

type mockPriceFallback struct {
	price float64
	err   error
	names []string
}

func (m *mockPriceFallback) AveragePrice(_ context.Context, name string) (float64, error) {
	m.names = append(m.names, name)
	return m.price, m.err
}

var _ = Describe("CardAnalyzer", func() {
	var (
		catalog  *mockCatalog
		ebay     *mockPriceFallback
		analyzer *CardAnalyzer
		ctx      context.Context
	)

	const pikachuText = "Pikachu VMAX\n310 HP\nLightning\n044/185"

	BeforeEach(func() {
		ctx = context.Background()
		catalog = newMockCatalog()
		ebay = &mockPriceFallback{}
		analyzer = NewCardAnalyzer(nil, catalog, ebay, NewTrendSynthesizer(fixedRand(0.5), nil), NewFallbackPolicy(fixedRand(0)))
	})

	Describe("AnalyzeText", func() {
		It("prices an exact catalog hit from its market price", func() {
			catalog.results[`name:"Pikachu VMAX"`] = []models.CatalogCard{
				pricedCard("swsh4-44", "Pikachu VMAX", 15.5),
			}

			result, err := analyzer.AnalyzeText(ctx, pikachuText)
			Expect(err).NotTo(HaveOccurred())

			Expect(result.CardID).To(Equal("swsh4-44"))
			Expect(result.Fallback).To(Equal(models.FallbackNone))
			Expect(result.MatchScore).To(Equal(1050))
			Expect(result.Price.Current).To(Equal(15.5))
			Expect(result.Price.Source).To(Equal(models.PriceSourceTCGPlayer))
			Expect(result.Price.Trend.CurrentPrice).To(Equal(15.5))
			Expect(result.Price.Trend.History).To(HaveLen(TrendPoints))
			Expect(*result.Guess.Name).To(Equal("Pikachu VMAX"))
			Expect(*result.Guess.HitPoints).To(Equal(310))
			Expect(result.Set).To(Equal("Unknown Set"))
			Expect(result.ID.String()).NotTo(BeEmpty())
			Expect(ebay.names).To(BeEmpty())
		})

		It("prefers a priced card among exact hits", func() {
			catalog.results[`name:"Pikachu VMAX"`] = []models.CatalogCard{
				plainCard("promo", "Pikachu VMAX"),
				pricedCard("swsh4-44", "Pikachu VMAX", 15.5),
			}

			result, err := analyzer.AnalyzeText(ctx, pikachuText)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.CardID).To(Equal("swsh4-44"))
		})

		It("ranks prefix results when the exact search is empty", func() {
			catalog.results["name:Pikachu*"] = []models.CatalogCard{
				plainCard("pv", "Pikachu V"),
				plainCard("pvmax", "Pikachu VMAX"),
			}
			ebay.price = 7.25

			result, err := analyzer.AnalyzeText(ctx, pikachuText)
			Expect(err).NotTo(HaveOccurred())

			Expect(catalog.Queries()).To(ConsistOf(`name:"Pikachu VMAX"`, "name:Pikachu*"))
			Expect(result.CardID).To(Equal("pvmax"))
			Expect(result.MatchScore).To(Equal(1000))
			Expect(result.Price.Current).To(Equal(7.25))
			Expect(result.Price.Source).To(Equal(models.PriceSourceEbay))
			Expect(ebay.names).To(Equal([]string{"Pikachu VMAX"}))
		})

		It("quotes the default price when no source has one", func() {
			catalog.results[`name:"Pikachu VMAX"`] = []models.CatalogCard{plainCard("p", "Pikachu VMAX")}
			ebay.err = errors.New("rate limited")

			result, err := analyzer.AnalyzeText(ctx, pikachuText)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Price.Current).To(Equal(DefaultFallbackPrice))
			Expect(result.Price.Source).To(Equal(models.PriceSourceEstimated))
		})

		It("treats a zero eBay price as missing", func() {
			catalog.results[`name:"Pikachu VMAX"`] = []models.CatalogCard{plainCard("p", "Pikachu VMAX")}

			result, err := analyzer.AnalyzeText(ctx, pikachuText)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Price.Source).To(Equal(models.PriceSourceEstimated))
		})

		It("quotes the default price without an eBay fallback", func() {
			catalog.results[`name:"Pikachu VMAX"`] = []models.CatalogCard{plainCard("p", "Pikachu VMAX")}
			analyzer = NewCardAnalyzer(nil, catalog, nil, nil, nil)

			result, err := analyzer.AnalyzeText(ctx, pikachuText)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Price.Current).To(Equal(DefaultFallbackPrice))
		})

		It("shows a popular card when nothing matches", func() {
			catalog.results[popularCardsQuery] = []models.CatalogCard{
				pricedCard("sv1-1", "Sprigatito", 3),
				pricedCard("sv1-2", "Floragato", 4),
			}

			result, err := analyzer.AnalyzeText(ctx, "Mewtwo\n130 HP")
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Fallback).To(Equal(models.FallbackPopular))
			Expect(result.CardID).To(Equal("sv1-1"))
			Expect(result.Price.Current).To(Equal(3.0))
		})

		It("skips the name searches when no name can be extracted", func() {
			catalog.results[popularCardsQuery] = []models.CatalogCard{pricedCard("sv1-1", "Sprigatito", 3)}

			result, err := analyzer.AnalyzeText(ctx, "123\n45")
			Expect(err).NotTo(HaveOccurred())
			Expect(catalog.Queries()).To(Equal([]string{popularCardsQuery}))
			Expect(result.Fallback).To(Equal(models.FallbackPopular))
		})

		It("shows the demo card when the catalog is unreachable", func() {
			catalog.err = errors.New("connection refused")

			result, err := analyzer.AnalyzeText(ctx, pikachuText)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Fallback).To(Equal(models.FallbackDemo))
			Expect(result.CardID).To(Equal("demo-card"))
			Expect(result.Set).To(Equal("Vivid Voltage"))
			Expect(result.Price.Current).To(Equal(12.99))
			Expect(result.Price.Source).To(Equal(models.PriceSourceTCGPlayer))
			Expect(result.Links.TCGPlayer).To(Equal("https://www.tcgplayer.com"))
		})

		It("leaves OCR details empty for text input", func() {
			catalog.results[`name:"Pikachu VMAX"`] = []models.CatalogCard{pricedCard("swsh4-44", "Pikachu VMAX", 15.5)}

			result, err := analyzer.AnalyzeText(ctx, pikachuText)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.OCREngine).To(BeEmpty())
			Expect(result.OCRConfidence).To(BeZero())
		})

		It("links to a marketplace search when the card has no product URL", func() {
			catalog.results[`name:"Pikachu VMAX"`] = []models.CatalogCard{plainCard("p", "Pikachu VMAX")}

			result, err := analyzer.AnalyzeText(ctx, pikachuText)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Links.TCGPlayer).To(Equal("https://www.tcgplayer.com/search/pokemon/product?q=Pikachu+VMAX"))
			Expect(result.Links.Cardmarket).To(Equal("https://www.cardmarket.com/en/Pokemon/Products/Search?searchString=Pikachu+VMAX"))
		})
	})

	Describe("SearchCard", func() {
		It("narrows both searches to the requested set", func() {
			catalog.results[`name:"Pikachu VMAX" set.name:"Vivid Voltage"`] = []models.CatalogCard{
				pricedCard("swsh4-44", "Pikachu VMAX", 15.5),
			}

			result, err := analyzer.SearchCard(ctx, "Pikachu VMAX!", " Vivid Voltage ")
			Expect(err).NotTo(HaveOccurred())
			Expect(catalog.Queries()).To(ConsistOf(
				`name:"Pikachu VMAX" set.name:"Vivid Voltage"`,
				`name:Pikachu* set.name:"Vivid Voltage"`,
			))
			Expect(result.CardID).To(Equal("swsh4-44"))
			Expect(result.Fallback).To(Equal(models.FallbackNone))
			Expect(*result.Guess.Name).To(Equal("Pikachu VMAX"))
			Expect(result.Price.Current).To(Equal(15.5))
			Expect(result.Price.Trend.History).To(HaveLen(TrendPoints))
		})

		It("searches by name alone without a set", func() {
			catalog.results["name:Pikachu*"] = []models.CatalogCard{
				plainCard("pv", "Pikachu V"),
				pricedCard("pvmax", "Pikachu VMAX", 9),
			}

			result, err := analyzer.SearchCard(ctx, "Pikachu VMAX", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(catalog.Queries()).To(ConsistOf(`name:"Pikachu VMAX"`, "name:Pikachu*"))
			Expect(result.CardID).To(Equal("pvmax"))
			Expect(result.MatchScore).To(Equal(1050))
		})

		It("strips quotes from the set name", func() {
			_, _ = analyzer.SearchCard(ctx, "Mew", `Base" OR name:"x`)
			Expect(catalog.Queries()).To(ContainElement(`name:"Mew" set.name:"Base OR name:x"`))
		})

		It("does not substitute a fallback card", func() {
			catalog.results[popularCardsQuery] = []models.CatalogCard{pricedCard("sv1-1", "Sprigatito", 3)}

			_, err := analyzer.SearchCard(ctx, "Mewtwo", "Base")
			Expect(err).To(MatchError(ErrNoCandidatesFound))
			Expect(catalog.Queries()).NotTo(ContainElement(popularCardsQuery))
		})

		It("rejects a name with nothing searchable", func() {
			_, err := analyzer.SearchCard(ctx, "!!!", "")
			Expect(errors.Is(err, ErrNoCandidatesFound)).To(BeTrue())
			Expect(catalog.Queries()).To(BeEmpty())
		})

		It("reports catalog failures as errors", func() {
			catalog.err = errors.New("connection refused")

			_, err := analyzer.SearchCard(ctx, "Mewtwo", "")
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, ErrNoCandidatesFound)).To(BeFalse())
		})
	})

	Describe("AnalyzeImage", func() {
		It("fails without a recognizer", func() {
			_, err := analyzer.AnalyzeImage(ctx, []byte("img"))
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, ErrNoTextExtracted)).To(BeFalse())
		})

		It("reports no text when the recognizer errors", func() {
			rec := &mockRecognizer{err: errors.New("timeout")}
			analyzer = NewCardAnalyzer(rec, catalog, ebay, nil, nil)

			_, err := analyzer.AnalyzeImage(ctx, []byte("img"))
			Expect(errors.Is(err, ErrNoTextExtracted)).To(BeTrue())
		})

		It("reports no text when recognition finds nothing", func() {
			rec := &mockRecognizer{result: &models.OCRResult{Engine: "mock", Error: "blank"}}
			analyzer = NewCardAnalyzer(rec, catalog, ebay, nil, nil)

			_, err := analyzer.AnalyzeImage(ctx, []byte("img"))
			Expect(err).To(MatchError(ErrNoTextExtracted))
			Expect(catalog.Queries()).To(BeEmpty())
		})

		It("analyzes the recognized text", func() {
			rec := &mockRecognizer{result: &models.OCRResult{Engine: "mock", RawText: pikachuText, Success: true, Confidence: 0.85}}
			catalog.results[`name:"Pikachu VMAX"`] = []models.CatalogCard{pricedCard("swsh4-44", "Pikachu VMAX", 15.5)}
			analyzer = NewCardAnalyzer(rec, catalog, ebay, nil, nil)

			result, err := analyzer.AnalyzeImage(ctx, []byte("img"))
			Expect(err).NotTo(HaveOccurred())
			Expect(result.CardID).To(Equal("swsh4-44"))
			Expect(result.RawText).To(Equal(pikachuText))
			Expect(result.OCREngine).To(Equal("mock"))
			Expect(result.OCRConfidence).To(Equal(0.85))
			Expect(analyzer.RecognizerName()).To(Equal("mock"))
		})
	})
})
