package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/codyseavey/card-price-lens/internal/config"
	"github.com/codyseavey/card-price-lens/internal/models"
)

// TextRecognizer extracts raw text from card image bytes. Implementations
// return a non-nil result with Success=false rather than an error when the
// engine ran but found nothing usable.
type TextRecognizer interface {
	Recognize(ctx context.Context, image []byte) (*models.OCRResult, error)
	Name() string
}

// NewTextRecognizer builds the recognizer selected in the config
func NewTextRecognizer(cfg config.Config) (TextRecognizer, error) {
	switch cfg.OCREngine {
	case config.OCREngineOCRSpace:
		return NewOCRSpaceService(cfg.OCRSpaceURL, cfg.OCRSpaceAPIKey, cfg.HTTPTimeout), nil
	case config.OCREngineTesseract:
		return NewTesseractService(cfg.TesseractPath), nil
	case config.OCREngineGemini:
		return NewGeminiOCRService(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", cfg.OCREngine)
	}
}

var errEmptyImage = errors.New("empty image data")

// DecodeImageData accepts raw base64 or a data URL ("data:image/png;base64,...")
func DecodeImageData(encoded string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "data:") {
		comma := strings.IndexByte(encoded, ',')
		if comma < 0 {
			return nil, fmt.Errorf("malformed data URL")
		}
		encoded = encoded[comma+1:]
	}
	if encoded == "" {
		return nil, errEmptyImage
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image data: %w", err)
	}
	return data, nil
}

// imageDataURL renders image bytes as a data URL with a sniffed MIME type
func imageDataURL(image []byte) string {
	return "data:" + sniffImageType(image) + ";base64," + base64.StdEncoding.EncodeToString(image)
}

func sniffImageType(image []byte) string {
	mime := http.DetectContentType(image)
	if !strings.HasPrefix(mime, "image/") {
		return "image/jpeg"
	}
	return mime
}

// estimateConfidence scores OCR output by its share of clean characters,
// for engines that don't report a confidence of their own
func estimateConfidence(lines []string) float64 {
	if len(lines) == 0 {
		return 0.0
	}

	totalChars := 0
	alphanumericChars := 0

	for _, line := range lines {
		for _, c := range line {
			totalChars++
			if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == ' ' {
				alphanumericChars++
			}
		}
	}

	if totalChars == 0 {
		return 0.0
	}

	confidence := float64(alphanumericChars) / float64(totalChars) * 0.8
	if len(lines) >= 3 {
		confidence += 0.2
	} else {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}
