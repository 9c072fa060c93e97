package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/codyseavey/card-price-lens/internal/api"
	"github.com/codyseavey/card-price-lens/internal/config"
	"github.com/codyseavey/card-price-lens/internal/services"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize text recognition
	recognizer, err := services.NewTextRecognizer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize OCR engine %s: %v", cfg.OCREngine, err)
	}
	if closer, ok := recognizer.(io.Closer); ok {
		defer closer.Close()
	}
	if tesseract, ok := recognizer.(*services.TesseractService); ok && !tesseract.IsAvailable() {
		log.Printf("Warning: tesseract not found at %s, image analysis will fail", cfg.TesseractPath)
	}
	log.Printf("OCR engine: %s", recognizer.Name())

	// Initialize catalog and pricing collaborators
	catalog := services.NewPokemonTCGService(cfg.PokemonTCGAPIKey, cfg.HTTPTimeout)

	var priceFallback services.PriceFallback
	if ebay := services.NewEbayPriceService(cfg.RapidAPIKey, cfg.HTTPTimeout); ebay.IsConfigured() {
		priceFallback = ebay
		log.Println("eBay price fallback: enabled")
	} else {
		log.Println("eBay price fallback: disabled (no RapidAPI key)")
	}

	analyzer := services.NewCardAnalyzer(
		recognizer,
		catalog,
		priceFallback,
		services.NewTrendSynthesizer(nil, nil),
		services.NewFallbackPolicy(nil),
	)

	// Setup router
	router := api.SetupRouter(analyzer, cfg.CORSOrigins)

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
