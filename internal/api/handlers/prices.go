package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/card-price-lens/internal/models"
	"github.com/codyseavey/card-price-lens/internal/services"
)

type PriceHandler struct {
	trend *services.TrendSynthesizer
}

func NewPriceHandler(trend *services.TrendSynthesizer) *PriceHandler {
	return &PriceHandler{
		trend: trend,
	}
}

// GetTrend returns a synthetic 12-week trend ending at ?price=
func (h *PriceHandler) GetTrend(c *gin.Context) {
	price, err := strconv.ParseFloat(c.Query("price"), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a non-negative number"})
		return
	}
	if price > services.MaxTrendPrice {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("price must not exceed %.0f", services.MaxTrendPrice)})
		return
	}

	c.JSON(http.StatusOK, h.trend.Synthesize(price))
}

// ResolvePrice returns the market price a catalog card would be quoted at
func (h *PriceHandler) ResolvePrice(c *gin.Context) {
	var req struct {
		Card models.CatalogCard `json:"card"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card is required"})
		return
	}

	card, ok := req.Card.Sanitize()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "card must have an id and a name"})
		return
	}

	price, found := services.ResolveMarketPrice(card)
	if !found {
		c.JSON(http.StatusOK, gin.H{"price": nil, "found": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"price": price, "found": true})
}
