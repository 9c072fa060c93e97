package services

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/codyseavey/card-price-lens/internal/models"
)

func pricedCard(id, name string, market float64) models.CatalogCard {
	return models.CatalogCard{
		ID:   id,
		Name: name,
		TCGPlayer: &models.TCGPlayerInfo{
			Prices: map[models.Variant]models.VariantPrice{
				models.VariantHolofoil: {Market: models.Float64Ptr(market)},
			},
		},
	}
}

func plainCard(id, name string) models.CatalogCard {
	return models.CatalogCard{ID: id, Name: name}
}

var _ = Describe("Card matching", func() {
	Describe("ScoreCandidate", func() {
		It("ranks an exact name above a containing name", func() {
			Expect(ScoreCandidate(pricedCard("a", "Charizard", 100), "Charizard")).To(Equal(1050))
			Expect(ScoreCandidate(pricedCard("b", "Charizard VMAX", 100), "Charizard")).To(Equal(550))
		})

		It("compares names case-insensitively", func() {
			Expect(ScoreCandidate(plainCard("a", "PIKACHU"), "pikachu")).To(Equal(1000))
		})

		It("scores a card name contained in the target", func() {
			Expect(ScoreCandidate(plainCard("a", "Mew"), "Mew ex")).To(Equal(400))
		})

		It("counts shared words when neither name contains the other", func() {
			Expect(ScoreCandidate(plainCard("a", "Charizard GX"), "Dark Charizard EX")).To(Equal(100))
			Expect(ScoreCandidate(plainCard("b", "Squirtle"), "Dark Charizard EX")).To(Equal(0))
		})

		It("adds the pricing bonus only when prices are present", func() {
			empty := plainCard("a", "Squirtle")
			empty.TCGPlayer = &models.TCGPlayerInfo{URL: "https://example.com"}
			Expect(ScoreCandidate(empty, "Bulbasaur")).To(Equal(0))
			Expect(ScoreCandidate(pricedCard("b", "Squirtle", 1), "Bulbasaur")).To(Equal(50))
		})
	})

	Describe("FindBestMatch", func() {
		It("returns nothing for an empty candidate list", func() {
			_, ok := FindBestMatch(nil, "Pikachu")
			Expect(ok).To(BeFalse())
		})

		It("always returns the only candidate", func() {
			card, ok := FindBestMatch([]models.CatalogCard{plainCard("x", "Totally Unrelated")}, "Pikachu")
			Expect(ok).To(BeTrue())
			Expect(card.ID).To(Equal("x"))
		})

		It("prefers the exact match regardless of position", func() {
			candidates := []models.CatalogCard{
				pricedCard("vmax", "Charizard VMAX", 300),
				pricedCard("base", "Charizard", 400),
			}
			card, ok := FindBestMatch(candidates, "Charizard")
			Expect(ok).To(BeTrue())
			Expect(card.ID).To(Equal("base"))
		})

		It("picks the priced exact match over a plain base card", func() {
			candidates := []models.CatalogCard{
				plainCard("base", "Charizard"),
				pricedCard("vmax", "Charizard VMAX", 50),
			}
			best, ok := RankCandidates(candidates, "Charizard VMAX")
			Expect(ok).To(BeTrue())
			Expect(best.Card.ID).To(Equal("vmax"))
			Expect(best.Score).To(Equal(1050))
			Expect(ScoreCandidate(candidates[0], "Charizard VMAX")).To(Equal(400))
		})

		It("keeps input order on ties", func() {
			candidates := []models.CatalogCard{
				plainCard("first", "Pikachu"),
				plainCard("second", "Pikachu"),
			}
			card, _ := FindBestMatch(candidates, "Pikachu")
			Expect(card.ID).To(Equal("first"))
		})

		It("falls back to the first candidate when nothing scores", func() {
			candidates := []models.CatalogCard{
				plainCard("first", "Bulbasaur"),
				plainCard("second", "Squirtle"),
			}
			best, ok := RankCandidates(candidates, "Mewtwo")
			Expect(ok).To(BeTrue())
			Expect(best.Card.ID).To(Equal("first"))
			Expect(best.Score).To(Equal(0))
		})

		It("lets the pricing bonus decide between otherwise unrelated cards", func() {
			candidates := []models.CatalogCard{
				plainCard("unpriced", "Squirtle"),
				pricedCard("priced", "Bulbasaur", 2),
			}
			best, _ := RankCandidates(candidates, "Mewtwo")
			Expect(best.Card.ID).To(Equal("priced"))
			Expect(best.Score).To(Equal(50))
		})

		It("returns a card from the candidate list", func() {
			candidates := []models.CatalogCard{
				plainCard("a", "Pikachu V"),
				plainCard("b", "Pikachu VMAX"),
				plainCard("c", "Flying Pikachu"),
			}
			card, ok := FindBestMatch(candidates, "Pikachu VMAX")
			Expect(ok).To(BeTrue())
			Expect(candidates).To(ContainElement(card))
			Expect(card.ID).To(Equal("b"))
		})
	})
})
