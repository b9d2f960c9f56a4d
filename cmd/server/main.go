package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"workboardmcp/server/internal/config"
	"workboardmcp/server/internal/mcp"
	"workboardmcp/server/internal/middleware"
	"workboardmcp/server/internal/modules"
	"workboardmcp/server/internal/modules/workboard"
	"workboardmcp/server/internal/observability"
)

func init() {
	// Register modules
	modules.RegisterModule(workboard.New())
}

func main() {
	// Optional .env for local development; real deployments set the env directly
	if err := godotenv.Load(); err == nil {
		log.Printf("Loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	config.WarnIfTokenExpired(cfg.Token)

	// Initialize observability (Loki)
	observability.Init()

	log.Printf("Registered modules: %v", modules.ListModules())
	log.Printf("Instance: %s", cfg.InstanceID)

	// Create router (Go 1.22+ method-aware patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Instance-ID", cfg.InstanceID)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","instance":"%s"}`, cfg.InstanceID)
	})

	// MCP endpoint with recovery + tracing + rate limit + transport middleware
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)
	mcpHandler := mcp.NewHandler()
	mux.Handle("/v1/mcp", middleware.Recovery(middleware.RequestID(rateLimiter.Middleware(middleware.Transport(mcpHandler, "/v1/mcp")))))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: mux,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting MCP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received signal %s, shutting down gracefully...", sig)

	// Give in-flight requests up to 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Printf("Server stopped")
}
