// Package config loads service settings from flags and CARDLENS_* environment
// variables. Credentials live here and are handed to the collaborator clients
// at construction time.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

const envPrefix = "CARDLENS"

// OCR engines that can back text recognition
const (
	OCREngineOCRSpace  = "ocrspace"
	OCREngineTesseract = "tesseract"
	OCREngineGemini    = "gemini"
)

type Config struct {
	Port        int
	HTTPTimeout time.Duration
	CORSOrigins []string

	PokemonTCGAPIKey string

	OCREngine      string
	OCRSpaceAPIKey string
	OCRSpaceURL    string
	TesseractPath  string
	GeminiAPIKey   string
	GeminiModel    string

	RapidAPIKey string
}

// Load parses args (without the program name) and the environment
func Load(args []string) (Config, error) {
	fs := ff.NewFlagSet("card-price-lens")
	var (
		port          = fs.IntLong("port", 8080, "HTTP server port")
		httpTimeout   = fs.DurationLong("http-timeout", 30*time.Second, "timeout for calls to external APIs")
		corsOrigins   = fs.StringLong("cors-allowed-origins", "http://localhost:5173,http://localhost:3000", "comma separated list of allowed CORS origins")
		pokemonKey    = fs.StringLong("pokemon-tcg-api-key", "", "pokemontcg.io API key (optional, raises quota)")
		ocrEngine     = fs.StringLong("ocr-engine", OCREngineOCRSpace, "text recognition engine: ocrspace, tesseract or gemini")
		ocrSpaceKey   = fs.StringLong("ocr-space-api-key", "", "OCR.space API key")
		ocrSpaceURL   = fs.StringLong("ocr-space-url", "https://api.ocr.space/parse/image", "OCR.space endpoint")
		tesseractPath = fs.StringLong("tesseract-path", "tesseract", "path to the tesseract binary")
		geminiKey     = fs.StringLong("gemini-api-key", "", "Google Gemini API key")
		geminiModel   = fs.StringLong("gemini-model", "gemini-2.0-flash", "Gemini model used for text recognition")
		rapidAPIKey   = fs.StringLong("rapidapi-key", "", "RapidAPI key for the eBay average price fallback (optional)")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix(envPrefix)); err != nil {
		return Config{}, fmt.Errorf("%w\n%s", err, ffhelp.Flags(fs))
	}

	cfg := Config{
		Port:             *port,
		HTTPTimeout:      *httpTimeout,
		CORSOrigins:      splitList(*corsOrigins),
		PokemonTCGAPIKey: *pokemonKey,
		OCREngine:        strings.ToLower(strings.TrimSpace(*ocrEngine)),
		OCRSpaceAPIKey:   *ocrSpaceKey,
		OCRSpaceURL:      *ocrSpaceURL,
		TesseractPath:    *tesseractPath,
		GeminiAPIKey:     *geminiKey,
		GeminiModel:      *geminiModel,
		RapidAPIKey:      *rapidAPIKey,
	}
	return cfg, cfg.Validate()
}

// Validate checks that the selected OCR engine has what it needs
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}

	switch c.OCREngine {
	case OCREngineOCRSpace:
		if c.OCRSpaceAPIKey == "" {
			return fmt.Errorf("ocr-space-api-key is required for the %s engine", c.OCREngine)
		}
	case OCREngineGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("gemini-api-key is required for the %s engine", c.OCREngine)
		}
	case OCREngineTesseract:
		if c.TesseractPath == "" {
			return fmt.Errorf("tesseract-path must not be empty")
		}
	default:
		return fmt.Errorf("unknown ocr engine %q (want %s, %s or %s)", c.OCREngine, OCREngineOCRSpace, OCREngineTesseract, OCREngineGemini)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
