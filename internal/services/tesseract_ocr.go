package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os/exec"
	"strings"
	"time"

	"github.com/codyseavey/card-price-lens/internal/metrics"
	"github.com/codyseavey/card-price-lens/internal/models"
)

const tesseractEngineName = "tesseract"

// TesseractService runs a local tesseract binary over the card image
type TesseractService struct {
	tesseractPath string
	language      string
}

func NewTesseractService(tesseractPath string) *TesseractService {
	if resolved, err := exec.LookPath(tesseractPath); err == nil {
		tesseractPath = resolved
	}
	return &TesseractService{
		tesseractPath: tesseractPath,
		language:      "eng",
	}
}

func (s *TesseractService) Name() string {
	return tesseractEngineName
}

// IsAvailable checks if Tesseract is available on the system
func (s *TesseractService) IsAvailable() bool {
	cmd := exec.Command(s.tesseractPath, "--version")
	return cmd.Run() == nil
}

// Recognize converts the image to contrast-stretched grayscale and pipes it
// through tesseract with automatic page segmentation
func (s *TesseractService) Recognize(ctx context.Context, imageData []byte) (*models.OCRResult, error) {
	if len(imageData) == 0 {
		return nil, errEmptyImage
	}

	start := time.Now()
	defer func() {
		metrics.OCRProcessingDuration.WithLabelValues(tesseractEngineName).Observe(time.Since(start).Seconds())
	}()

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		metrics.OCRRequestsTotal.WithLabelValues(tesseractEngineName, "error").Inc()
		return nil, fmt.Errorf("invalid image data: %w", err)
	}

	processed, err := preprocessImageForOCR(img)
	if err != nil {
		metrics.OCRRequestsTotal.WithLabelValues(tesseractEngineName, "error").Inc()
		return nil, fmt.Errorf("failed to preprocess image: %w", err)
	}

	cmd := exec.CommandContext(ctx,
		s.tesseractPath,
		"stdin",
		"stdout",
		"-l", s.language,
		"--psm", "3", // Fully automatic page segmentation
		"--oem", "3", // Default OCR Engine Mode (LSTM + Legacy)
	)
	cmd.Stdin = bytes.NewReader(processed)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		metrics.OCRRequestsTotal.WithLabelValues(tesseractEngineName, "error").Inc()
		return nil, fmt.Errorf("tesseract error: %w - %s", err, strings.TrimSpace(stderr.String()))
	}

	text := stdout.String()
	lines := splitAndCleanLines(text)
	if len(lines) == 0 {
		metrics.OCRRequestsTotal.WithLabelValues(tesseractEngineName, "failed").Inc()
		return &models.OCRResult{
			Engine: tesseractEngineName,
			Error:  "No text could be extracted from image",
		}, nil
	}

	metrics.OCRRequestsTotal.WithLabelValues(tesseractEngineName, "success").Inc()
	return &models.OCRResult{
		Success:    true,
		RawText:    text,
		Engine:     tesseractEngineName,
		Confidence: estimateConfidence(lines),
	}, nil
}

// preprocessImageForOCR converts to grayscale and stretches contrast between
// the 1st and 99th percentile, then encodes as PNG
func preprocessImageForOCR(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)

	histogram := make([]int, 256)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			lum := uint8((0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 256)
			gray.SetGray(x, y, color.Gray{Y: lum})
			histogram[lum]++
		}
	}

	minVal, maxVal := percentileBounds(histogram, bounds.Dx()*bounds.Dy()/100)
	if maxVal > minVal {
		scale := 255.0 / float64(maxVal-minVal)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				v := int(float64(int(gray.GrayAt(x, y).Y)-minVal) * scale)
				gray.SetGray(x, y, color.Gray{Y: uint8(min(max(v, 0), 255))})
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, gray); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// percentileBounds finds the gray levels below and above which `cut` pixels lie
func percentileBounds(histogram []int, cut int) (int, int) {
	minVal, maxVal := 0, 255

	count := 0
	for i := 0; i < 256; i++ {
		count += histogram[i]
		if count >= cut {
			minVal = i
			break
		}
	}

	count = 0
	for i := 255; i >= 0; i-- {
		count += histogram[i]
		if count >= cut {
			maxVal = i
			break
		}
	}
	return minVal, maxVal
}
