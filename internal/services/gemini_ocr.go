package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/codyseavey/card-price-lens/internal/metrics"
	"github.com/codyseavey/card-price-lens/internal/models"
)

const (
	geminiEngineName   = "gemini"
	defaultGeminiModel = "gemini-2.0-flash"
)

// Gemini is asked for a plain transcription so its output goes through the
// same text parser as every other engine
const geminiTranscribePrompt = `Transcribe all printed text on this trading card exactly as it appears,
top to bottom, one line of card text per output line. Include the card name,
HP, energy type, attack names and the collector number (for example 025/165).
Output only the transcription, no commentary and no markdown.`

// GeminiOCRService uses Gemini vision as a text recognizer
type GeminiOCRService struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiOCRService creates the Gemini client for text recognition
func NewGeminiOCRService(ctx context.Context, apiKey, modelName string) (*GeminiOCRService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &GeminiOCRService{
		client: client,
		model:  model,
	}, nil
}

func (s *GeminiOCRService) Name() string {
	return geminiEngineName
}

// Recognize sends the image with a transcription prompt
func (s *GeminiOCRService) Recognize(ctx context.Context, image []byte) (*models.OCRResult, error) {
	if len(image) == 0 {
		return nil, errEmptyImage
	}

	start := time.Now()
	defer func() {
		metrics.OCRProcessingDuration.WithLabelValues(geminiEngineName).Observe(time.Since(start).Seconds())
	}()

	// genai.ImageData expects the format suffix ("png"), not the MIME type
	format := strings.TrimPrefix(sniffImageType(image), "image/")
	resp, err := s.model.GenerateContent(ctx,
		genai.ImageData(format, image),
		genai.Text(geminiTranscribePrompt),
	)
	if err != nil {
		metrics.OCRRequestsTotal.WithLabelValues(geminiEngineName, "error").Inc()
		return nil, fmt.Errorf("generating content: %w", err)
	}

	text := stripCodeFence(collectGeminiText(resp))

	if text == "" {
		metrics.OCRRequestsTotal.WithLabelValues(geminiEngineName, "failed").Inc()
		return &models.OCRResult{
			Engine: geminiEngineName,
			Error:  "No text could be extracted from image",
		}, nil
	}

	metrics.OCRRequestsTotal.WithLabelValues(geminiEngineName, "success").Inc()
	return &models.OCRResult{
		Success:    true,
		RawText:    text,
		Engine:     geminiEngineName,
		Confidence: estimateConfidence(splitAndCleanLines(text)),
	}, nil
}

// Close closes the Gemini client
func (s *GeminiOCRService) Close() error {
	return s.client.Close()
}

func collectGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

// stripCodeFence removes a markdown fence the model sometimes adds anyway
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
