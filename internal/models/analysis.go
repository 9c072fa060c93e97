package models

import (
	"time"

	"github.com/google/uuid"
)

// FallbackKind tells the client whether the card shown was actually matched
type FallbackKind string

const (
	FallbackNone    FallbackKind = ""
	FallbackPopular FallbackKind = "popular" // random recent card with pricing
	FallbackDemo    FallbackKind = "demo"    // fixed demonstration card
)

// CardLinks are marketplace links for the identified card
type CardLinks struct {
	TCGPlayer  string `json:"tcgplayer"`
	Cardmarket string `json:"cardmarket"`
}

// CardAnalysis is the full result of identifying and pricing a card
type CardAnalysis struct {
	AnalyzedAt time.Time    `json:"analyzed_at"`
	Guess      CardGuess    `json:"guess"`
	Links      CardLinks    `json:"links"`
	Price      PriceQuote   `json:"price"`
	CardID     string       `json:"card_id"`
	Name       string       `json:"name"`
	Set        string       `json:"set"`
	Number     string       `json:"number"`
	Rarity     string       `json:"rarity"`
	RawText    string       `json:"raw_text,omitempty"`
	Fallback   FallbackKind `json:"fallback,omitempty"`
	MatchScore int          `json:"match_score"`
	ID         uuid.UUID    `json:"id"`

	// Set only when the text came from an image
	OCREngine     string  `json:"ocr_engine,omitempty"`
	OCRConfidence float64 `json:"ocr_confidence,omitempty"`
}
