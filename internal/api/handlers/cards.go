package handlers

import (
	"bytes"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/card-price-lens/internal/models"
	"github.com/codyseavey/card-price-lens/internal/services"
)

// Largest image accepted for analysis
const maxImageBytes = 10 << 20

type CardHandler struct {
	analyzer *services.CardAnalyzer
}

func NewCardHandler(analyzer *services.CardAnalyzer) *CardHandler {
	return &CardHandler{
		analyzer: analyzer,
	}
}

// AnalyzeImage identifies and prices a card from an uploaded image. Accepts a
// multipart "image" file or a JSON body with a base64 image or data URL.
func (h *CardHandler) AnalyzeImage(c *gin.Context) {
	imageBytes, ok := readImage(c)
	if !ok {
		return
	}

	result, err := h.analyzer.AnalyzeImage(c.Request.Context(), imageBytes)
	if err != nil {
		if errors.Is(err, services.ErrNoTextExtracted) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Could not extract text from image"})
			return
		}
		log.Printf("Card analysis failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Card analysis failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// IdentifyFromText runs the pipeline on text recognized elsewhere
func (h *CardHandler) IdentifyFromText(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	result, err := h.analyzer.AnalyzeText(c.Request.Context(), req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// SearchCard looks a card up by typed name and optional set name
func (h *CardHandler) SearchCard(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
		Set  string `json:"set"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	result, err := h.analyzer.SearchCard(c.Request.Context(), req.Name, req.Set)
	if err != nil {
		if errors.Is(err, services.ErrNoCandidatesFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Card not found. Try a different search."})
			return
		}
		log.Printf("Manual card search failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Card search failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ParseText returns the structured guess for raw OCR text
func (h *CardHandler) ParseText(c *gin.Context) {
	var req struct {
		Text *string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	c.JSON(http.StatusOK, services.ParseCardText(*req.Text))
}

// MatchCandidates ranks caller-supplied catalog cards against a name.
// Candidates without an id or name are ignored.
func (h *CardHandler) MatchCandidates(c *gin.Context) {
	var req struct {
		Name       string               `json:"name" binding:"required"`
		Candidates []models.CatalogCard `json:"candidates"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	candidates := make([]models.CatalogCard, 0, len(req.Candidates))
	for _, card := range req.Candidates {
		if valid, ok := card.Sanitize(); ok {
			candidates = append(candidates, valid)
		}
	}

	best, ok := services.RankCandidates(candidates, req.Name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no valid candidates to match"})
		return
	}

	c.JSON(http.StatusOK, best)
}

// GetOCRStatus reports which text recognition engine is configured
func (h *CardHandler) GetOCRStatus(c *gin.Context) {
	engine := h.analyzer.RecognizerName()
	c.JSON(http.StatusOK, gin.H{
		"engine":  engine,
		"enabled": engine != "",
	})
}

// readImage pulls image bytes from a multipart upload or a JSON body,
// writing a 400 response and returning false on failure
func readImage(c *gin.Context) ([]byte, bool) {
	if file, err := c.FormFile("image"); err == nil {
		if file.Size > maxImageBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image too large"})
			return nil, false
		}
		src, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
			return nil, false
		}
		defer src.Close()

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(src); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
			return nil, false
		}
		return buf.Bytes(), true
	}

	var req struct {
		Image string `json:"image" binding:"required"` // base64 or data URL
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "No image provided",
			"message": "Upload an image file or provide base64 encoded image in JSON body",
		})
		return nil, false
	}

	imageBytes, err := services.DecodeImageData(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid base64 image data"})
		return nil, false
	}
	if len(imageBytes) > maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image too large"})
		return nil, false
	}
	return imageBytes, true
}
