package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/codyseavey/card-price-lens/internal/models"
)

// Maximum allowed OCR text length to prevent regex DoS
const maxOCRTextLength = 10000

// Only the first few lines of a card carry its name
const maxNameScanLines = 5

var (
	hpPattern        = regexp.MustCompile(`(?i)(\d+)\s*HP`)
	setNumberPattern = regexp.MustCompile(`\d+/\d+`)
	typePattern      = regexp.MustCompile(`(?i)(Grass|Fire|Water|Lightning|Psychic|Fighting|Darkness|Metal|Fairy|Dragon|Colorless)`)
	standaloneV      = regexp.MustCompile(`\bV\b`)

	nameStopLine   = regexp.MustCompile(`(?i)^(HP|Stage|Evolves|Basic|VMAX|GX|EX|V)$`)
	capitalizedRun = regexp.MustCompile(`^[A-Z][a-z]+`)
	variantEnding  = regexp.MustCompile(`(?i)(VMAX|GX|EX|V)$`)
	allDigits      = regexp.MustCompile(`^\d+$`)
	startsWithChar = regexp.MustCompile(`^[A-Za-z]`)
	nonWordChars   = regexp.MustCompile(`[^\w\s]`)
)

// canonicalTypes maps a lowercased energy type to its printed spelling
var canonicalTypes = map[string]string{
	"grass":     "Grass",
	"fire":      "Fire",
	"water":     "Water",
	"lightning": "Lightning",
	"psychic":   "Psychic",
	"fighting":  "Fighting",
	"darkness":  "Darkness",
	"metal":     "Metal",
	"fairy":     "Fairy",
	"dragon":    "Dragon",
	"colorless": "Colorless",
}

// ParseCardText extracts a best-guess card record from raw OCR text.
// It never fails: fields it cannot find are left nil.
func ParseCardText(rawText string) models.CardGuess {
	text := truncateOCRText(rawText)
	lines := splitAndCleanLines(text)

	var guess models.CardGuess

	if name := findNameLine(lines); name != "" {
		guess.Name = &name
	}

	if m := hpPattern.FindStringSubmatch(text); m != nil {
		if hp, err := strconv.Atoi(m[1]); err == nil {
			guess.HitPoints = &hp
		}
	}

	if m := setNumberPattern.FindString(text); m != "" {
		guess.SetNumber = &m
	}

	if m := typePattern.FindStringSubmatch(text); m != nil {
		t := canonicalTypes[strings.ToLower(m[1])]
		guess.TypeHint = &t
	}

	if suffix := detectVariantSuffix(text); suffix != "" {
		name := "Unknown " + suffix
		if guess.Name != nil {
			name = appendSuffix(*guess.Name, suffix)
		}
		guess.Name = &name
	}

	return guess
}

// ExtractCardName returns the parsed name or, failing that, the first line
// that looks like words rather than numbers.
func ExtractCardName(rawText string) *string {
	if guess := ParseCardText(rawText); guess.Name != nil {
		return guess.Name
	}

	for _, line := range splitAndCleanLines(truncateOCRText(rawText)) {
		if len(line) < 3 || allDigits.MatchString(line) {
			continue
		}
		if startsWithChar.MatchString(line) {
			return &line
		}
	}
	return nil
}

// CleanSearchName strips punctuation so the name can be embedded in a catalog query
func CleanSearchName(name string) string {
	return strings.TrimSpace(nonWordChars.ReplaceAllString(name, ""))
}

func findNameLine(lines []string) string {
	for i := 0; i < len(lines) && i < maxNameScanLines; i++ {
		line := lines[i]
		if len(line) < 3 || nameStopLine.MatchString(line) || allDigits.MatchString(line) {
			continue
		}
		if capitalizedRun.MatchString(line) || variantEnding.MatchString(line) {
			return line
		}
	}
	return ""
}

// detectVariantSuffix applies the VMAX > GX > EX > V precedence
func detectVariantSuffix(text string) string {
	switch {
	case strings.Contains(text, "VMAX"):
		return "VMAX"
	case strings.Contains(text, " GX"):
		return "GX"
	case strings.Contains(text, " EX"):
		return "EX"
	case standaloneV.MatchString(text):
		return "V"
	}
	return ""
}

func appendSuffix(name, suffix string) string {
	for _, word := range strings.Fields(name) {
		if strings.EqualFold(word, suffix) {
			return name
		}
	}
	return name + " " + suffix
}

func splitAndCleanLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func truncateOCRText(text string) string {
	if len(text) <= maxOCRTextLength {
		return text
	}
	return strings.ToValidUTF8(text[:maxOCRTextLength], "")
}
