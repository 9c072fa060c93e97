package services

import (
	"strings"

	"github.com/codyseavey/card-price-lens/internal/models"
)

// Match scores. Only their relative order matters: an exact name beats a
// containment match, which beats any realistic count of shared words.
const (
	scoreExactName      = 1000
	scoreContainsTarget = 500
	scoreTargetContains = 400
	scorePerSharedWord  = 100
	scorePricingBonus   = 50
)

// ScoreCandidate scores how well a catalog card's name matches the target name
func ScoreCandidate(card models.CatalogCard, target string) int {
	cardName := strings.ToLower(card.Name)
	targetName := strings.ToLower(target)

	var score int
	switch {
	case cardName == targetName:
		score = scoreExactName
	case strings.Contains(cardName, targetName):
		score = scoreContainsTarget
	case strings.Contains(targetName, cardName):
		score = scoreTargetContains
	default:
		score = scorePerSharedWord * countSharedWords(targetName, cardName)
	}

	if card.HasPricing() {
		score += scorePricingBonus
	}
	return score
}

// FindBestMatch picks the candidate whose name best matches target.
// Ties keep input order. When nothing scores, the first candidate is
// returned so a non-empty list always yields a card.
func FindBestMatch(candidates []models.CatalogCard, target string) (models.CatalogCard, bool) {
	best, ok := RankCandidates(candidates, target)
	if !ok {
		return models.CatalogCard{}, false
	}
	return best.Card, true
}

// RankCandidates is FindBestMatch that also reports the winning score
func RankCandidates(candidates []models.CatalogCard, target string) (models.ScoredCandidate, bool) {
	if len(candidates) == 0 {
		return models.ScoredCandidate{}, false
	}

	best := models.ScoredCandidate{Card: candidates[0], Score: ScoreCandidate(candidates[0], target)}
	for _, card := range candidates[1:] {
		if score := ScoreCandidate(card, target); score > best.Score {
			best = models.ScoredCandidate{Card: card, Score: score}
		}
	}

	if best.Score <= 0 {
		return models.ScoredCandidate{Card: candidates[0], Score: 0}, true
	}
	return best, true
}

// countSharedWords counts target words that also appear in the card name
func countSharedWords(target, cardName string) int {
	cardWords := make(map[string]struct{})
	for _, w := range strings.Fields(cardName) {
		cardWords[w] = struct{}{}
	}

	count := 0
	for _, w := range strings.Fields(target) {
		if _, ok := cardWords[w]; ok {
			count++
		}
	}
	return count
}
