package api

import (
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/card-price-lens/internal/api/handlers"
	"github.com/codyseavey/card-price-lens/internal/metrics"
	"github.com/codyseavey/card-price-lens/internal/services"
)

func SetupRouter(analyzer *services.CardAnalyzer, corsOrigins []string) *gin.Engine {
	router := gin.Default()
	router.Use(metricsMiddleware())

	// CORS configuration - extension and local dev origins come from config
	config := cors.DefaultConfig()
	if len(corsOrigins) > 0 {
		config.AllowOrigins = corsOrigins
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	config.AllowCredentials = false
	config.AllowBrowserExtensions = true
	router.Use(cors.New(config))

	// Initialize handlers
	cardHandler := handlers.NewCardHandler(analyzer)
	priceHandler := handlers.NewPriceHandler(analyzer.Trend())

	// API routes
	api := router.Group("/api")
	{
		// Card routes
		cards := api.Group("/cards")
		{
			cards.POST("/analyze", cardHandler.AnalyzeImage)
			cards.POST("/identify", cardHandler.IdentifyFromText)
			cards.POST("/search", cardHandler.SearchCard)
			cards.POST("/parse", cardHandler.ParseText)
			cards.POST("/match", cardHandler.MatchCandidates)
			cards.GET("/ocr-status", cardHandler.GetOCRStatus)
		}

		// Price routes
		prices := api.Group("/prices")
		{
			prices.GET("/trend", priceHandler.GetTrend)
			prices.POST("/resolve", priceHandler.ResolvePrice)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// metricsMiddleware records request counts and latency by route template
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
