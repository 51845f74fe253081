// ABOUTME: Main entry point for the query routing HTTP service
// ABOUTME: Loads config and .env, serves until SIGINT or SIGTERM
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ecosense/aqroute/internal/config"
	"github.com/ecosense/aqroute/internal/server"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.OpenAIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set - model-assisted recovery will not work")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Serve(ctx, cfg); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}
