// main.go - The entry point and router setup.

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bosocmputer/pharmacist_assistant/configs"
	"github.com/bosocmputer/pharmacist_assistant/internal/ai"
	"github.com/bosocmputer/pharmacist_assistant/internal/api"
	"github.com/bosocmputer/pharmacist_assistant/internal/fda"
	"github.com/bosocmputer/pharmacist_assistant/internal/processor"
	"github.com/bosocmputer/pharmacist_assistant/internal/storage"
	"github.com/gin-gonic/gin"
)

func main() {
	// Step 0: Load configuration from environment variables
	configs.LoadConfig()

	// Step 0.5: Set production mode
	if ginMode := os.Getenv("GIN_MODE"); ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Step 1: Build the Gemini pipeline
	gen, err := ai.NewGeneratorFromConfig()
	if err != nil {
		log.Fatalf("Failed to create Gemini generator: %v", err)
	}
	pipeline := processor.NewPipelineFromConfig(
		ai.NewExtractorFromConfig(gen),
		ai.NewVerifierFromConfig(gen),
	)

	// Step 2: Session storage, MongoDB when configured
	ttl := time.Duration(configs.SESSION_TTL_MINUTES) * time.Minute
	var store storage.Store
	if configs.MONGO_URI != "" {
		mongoStore, err := storage.NewMongoStore(context.Background(), configs.MONGO_URI, configs.MONGO_DB_NAME, ttl)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		store = mongoStore
	} else {
		memStore := storage.NewMemoryStore(ttl)
		sweeper, err := storage.StartSweeper(memStore, 5*time.Minute)
		if err != nil {
			log.Fatalf("Failed to start session sweeper: %v", err)
		}
		defer sweeper.Stop()
		store = memStore
		log.Println("Using in-memory session storage (MONGO_URI not set)")
	}
	defer store.Close(context.Background())

	// Step 3: Initialize the Gin router
	limiter := api.NewClientRateLimiter(configs.CLIENT_RATE_PER_SEC, configs.CLIENT_RATE_BURST)
	cleanup, err := limiter.StartCleanup(30 * time.Minute)
	if err != nil {
		log.Fatalf("Failed to start rate limiter cleanup: %v", err)
	}
	defer cleanup.Stop()

	retry := ai.DefaultRetryConfig
	retry.MaxAttempts = configs.PROCESS_MAX_ATTEMPTS

	handler := &api.Handler{Pipeline: pipeline, Store: store, Retry: retry}
	if configs.FDA_BASE_URL != "off" {
		handler.Warnings = fda.NewClient(configs.FDA_BASE_URL, configs.FDA_API_KEY)
	}
	router := api.NewRouter(handler, api.RouterConfig{
		AllowedOrigins: configs.ALLOWED_ORIGINS,
		MaxUploadBytes: int64(configs.MAX_UPLOAD_MB) << 20,
		Limiter:        limiter,
	})

	// Step 4: Setup HTTP server with timeouts
	srv := &http.Server{
		Addr:           ":" + configs.PORT,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   3 * time.Minute, // Allow up to 3 minutes for AI processing
		MaxHeaderBytes: 1 << 20,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on :%s", configs.PORT)
		log.Println("API Endpoints:")
		log.Println("  POST /api/v1/prescriptions")
		log.Println("  GET  /api/v1/prescriptions/:id")
		log.Println("  GET  /api/v1/prescriptions/:id/spellcheck")
		log.Println("  POST /api/v1/prescriptions/:id/order")
		log.Println("  GET  /api/v1/prescriptions/:id/whatsapp")
		log.Println("  GET  /api/v1/prescriptions/:id/warnings")
		log.Println("  GET  /metrics")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
