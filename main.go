package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pmalinen/EncryptBin/config"
	"github.com/pmalinen/EncryptBin/handlers"
	"github.com/pmalinen/EncryptBin/internal/services"
	"github.com/pmalinen/EncryptBin/internal/sweep"
	"github.com/pmalinen/EncryptBin/storage"
)

// Version info (set via -ldflags at build time)
var Version = "dev"

func main() {
	log.Printf("EncryptBin Version: %s", Version)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	cfg.Version = Version

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	store, err := storage.NewStore(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	log.Printf("Plaintext pastes enabled: %v", cfg.AllowPlaintext)
	if len(cfg.EditTokens) > 0 {
		log.Printf("Edit authorization: shared allowlist (%d tokens)", len(cfg.EditTokens))
	} else {
		log.Printf("Edit authorization: per-paste edit keys")
	}

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	if cfg.CleanupInterval > 0 {
		log.Printf("In-process cleanup sweep every %s", cfg.CleanupInterval)
		sweep.StartJanitor(janitorCtx, store, cfg.CleanupInterval, logger)
	}

	router := setupRouter(store, cfg)
	runHTTPServer(router, cfg, store)
}

// setupRouter creates and configures the Gin router
func setupRouter(store storage.PasteStore, cfg *config.Config) *gin.Engine {
	pasteService := services.NewPasteService(store, cfg)

	pasteHandler := handlers.NewPasteHandler(pasteService, cfg)
	systemHandler := handlers.NewSystemHandler(cfg.Version)
	limiter := handlers.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// System endpoints
	router.GET("/health", systemHandler.Health)
	router.GET("/api/version", systemHandler.Version)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Paste API
	router.POST("/api/paste_encrypted", handlers.RateLimit(limiter), pasteHandler.CreateEncrypted)
	if cfg.AllowPlaintext {
		router.POST("/api/paste", handlers.RateLimit(limiter), pasteHandler.CreatePlaintext)
	} else {
		router.POST("/api/paste", pasteHandler.PlaintextDisabled)
	}
	router.PATCH("/api/paste/:id", pasteHandler.UpdateTitle)
	router.DELETE("/api/paste/:id", pasteHandler.Delete)
	router.GET("/p/:id", pasteHandler.View)
	router.GET("/raw/:id", pasteHandler.Raw)

	return router
}

// runHTTPServer starts the HTTP server with graceful shutdown
func runHTTPServer(router *gin.Engine, cfg *config.Config, store storage.PasteStore) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("[ERROR] Server shutdown: %v", err)
	}
	if err := store.Close(); err != nil {
		log.Printf("[ERROR] Storage close: %v", err)
	}
	log.Println("Server stopped")
}
