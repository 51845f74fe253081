// ABOUTME: Serve command runs the HTTP query routing service
// ABOUTME: Same wiring as the standalone server binary
package commands

import (
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ecosense/aqroute/internal/config"
	"github.com/ecosense/aqroute/internal/server"
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP query routing service",
		Long: `Start the HTTP query routing service.

Listens for POST /query requests and answers them through the
structured report APIs or the general query backend. Configuration
comes from environment variables and an optional .env file.`,
		RunE: runServe,
		Example: `  # Start with defaults (listens on :8080)
  aqroute serve

  # Custom listen address
  AQROUTE_LISTEN_ADDR=:9090 aqroute serve`,
	}

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil && !quiet {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.OpenAIKey == "" && !quiet {
		log.Println("Warning: OPENAI_API_KEY not set - model-assisted recovery will not work")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx, cfg)
}
