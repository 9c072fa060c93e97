package models

// OCRResult is what a text recognizer reports for one image
type OCRResult struct {
	RawText    string  `json:"raw_text"`
	Error      string  `json:"error,omitempty"`
	Engine     string  `json:"engine"`
	Confidence float64 `json:"confidence"`
	Success    bool    `json:"success"`
}

// CardGuess is the structured best guess extracted from recognized text.
// Every field is independently optional.
type CardGuess struct {
	Name      *string `json:"name,omitempty"`
	HitPoints *int    `json:"hp,omitempty"`
	SetNumber *string `json:"set_number,omitempty"` // e.g. "025/165"
	TypeHint  *string `json:"type,omitempty"`       // e.g. "Lightning"
}

// IsEmpty returns true when nothing could be extracted
func (g CardGuess) IsEmpty() bool {
	return g.Name == nil && g.HitPoints == nil && g.SetNumber == nil && g.TypeHint == nil
}

// ScoredCandidate pairs a catalog card with its ranking score
type ScoredCandidate struct {
	Card  CatalogCard `json:"card"`
	Score int         `json:"score"`
}
