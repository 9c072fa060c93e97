package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/codyseavey/card-price-lens/internal/metrics"
	"github.com/codyseavey/card-price-lens/internal/models"
)

const ocrSpaceEngineName = "ocrspace"

// OCRSpaceService sends card images to the OCR.space parse API
type OCRSpaceService struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

func NewOCRSpaceService(endpoint, apiKey string, timeout time.Duration) *OCRSpaceService {
	return &OCRSpaceService{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: endpoint,
		apiKey:   apiKey,
	}
}

type ocrSpaceResponse struct {
	ParsedResults         []ocrSpaceParsedResult `json:"ParsedResults"`
	ErrorMessage          json.RawMessage        `json:"ErrorMessage"` // string or []string
	IsErroredOnProcessing bool                   `json:"IsErroredOnProcessing"`
}

type ocrSpaceParsedResult struct {
	ParsedText string `json:"ParsedText"`
}

func (s *OCRSpaceService) Name() string {
	return ocrSpaceEngineName
}

// Recognize posts the image as a base64 data URL using OCR engine 2
func (s *OCRSpaceService) Recognize(ctx context.Context, image []byte) (*models.OCRResult, error) {
	if len(image) == 0 {
		return nil, errEmptyImage
	}

	start := time.Now()
	defer func() {
		metrics.OCRProcessingDuration.WithLabelValues(ocrSpaceEngineName).Observe(time.Since(start).Seconds())
	}()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	fields := []struct{ key, value string }{
		{"base64Image", imageDataURL(image)},
		{"apikey", s.apiKey},
		{"language", "eng"},
		{"isOverlayRequired", "false"},
		{"detectOrientation", "true"},
		{"scale", "true"},
		{"OCREngine", "2"},
	}
	for _, f := range fields {
		if err := form.WriteField(f.key, f.value); err != nil {
			return nil, fmt.Errorf("failed to build OCR form: %w", err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to build OCR form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.OCRRequestsTotal.WithLabelValues(ocrSpaceEngineName, "error").Inc()
		return nil, fmt.Errorf("OCR request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.OCRRequestsTotal.WithLabelValues(ocrSpaceEngineName, "error").Inc()
		return nil, fmt.Errorf("OCR API request failed with status %d", resp.StatusCode)
	}

	var parsed ocrSpaceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.OCRRequestsTotal.WithLabelValues(ocrSpaceEngineName, "error").Inc()
		return nil, fmt.Errorf("failed to decode OCR response: %w", err)
	}

	result := &models.OCRResult{Engine: ocrSpaceEngineName}
	switch {
	case parsed.IsErroredOnProcessing:
		result.Error = firstErrorMessage(parsed.ErrorMessage)
	case len(parsed.ParsedResults) == 0 || strings.TrimSpace(parsed.ParsedResults[0].ParsedText) == "":
		result.Error = "No text could be extracted from image"
	default:
		result.Success = true
		result.RawText = parsed.ParsedResults[0].ParsedText
		result.Confidence = estimateConfidence(splitAndCleanLines(result.RawText))
	}

	if result.Success {
		metrics.OCRRequestsTotal.WithLabelValues(ocrSpaceEngineName, "success").Inc()
	} else {
		metrics.OCRRequestsTotal.WithLabelValues(ocrSpaceEngineName, "failed").Inc()
	}
	return result, nil
}

// firstErrorMessage handles OCR.space reporting errors as a string or a list
func firstErrorMessage(raw json.RawMessage) string {
	const fallback = "OCR processing failed"
	if len(raw) == 0 {
		return fallback
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) > 0 && list[0] != "" {
			return list[0]
		}
		return fallback
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return single
	}
	return fallback
}
