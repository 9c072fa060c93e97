package services

import "errors"

var (
	// ErrNoTextExtracted means the recognizer produced no usable text
	ErrNoTextExtracted = errors.New("no text extracted from image")

	// ErrNoCandidatesFound means no catalog search returned a card
	ErrNoCandidatesFound = errors.New("no catalog candidates found")

	// ErrNoPriceAvailable means neither the catalog nor the fallback had a price
	ErrNoPriceAvailable = errors.New("no price available")
)
