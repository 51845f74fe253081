// ABOUTME: Composition root building the full service from a loaded config
// ABOUTME: Shared by the server binary and the CLI serve command
package server

import (
	"context"
	"log"

	"github.com/ecosense/aqroute/internal/config"
	"github.com/ecosense/aqroute/internal/extract"
	"github.com/ecosense/aqroute/internal/fallback"
	"github.com/ecosense/aqroute/internal/general"
	"github.com/ecosense/aqroute/internal/geo"
	"github.com/ecosense/aqroute/internal/llm"
	"github.com/ecosense/aqroute/internal/monitor"
	"github.com/ecosense/aqroute/internal/pipeline"
	"github.com/ecosense/aqroute/internal/report"
	"github.com/ecosense/aqroute/internal/timeparse"
)

// Build assembles the pipeline and router from a loaded service config
func Build(cfg *config.Config) (*Router, error) {
	routing, err := config.NewStore(cfg.RoutingConfigPath)
	if err != nil {
		return nil, err
	}
	tables, err := geo.NewStore(cfg.GeoTablePath)
	if err != nil {
		return nil, err
	}

	var client llm.Client = llm.Disabled{}
	if cfg.OpenAIKey != "" {
		client, err = llm.NewOpenAIClientWithConfig(&llm.ClientConfig{
			APIKey:     cfg.OpenAIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			ChatModel:  cfg.ChatModel,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		})
		if err != nil {
			return nil, err
		}
	}

	metrics := &monitor.Metrics{}
	extractor := extract.New(routing, geo.NewResolver(tables, routing), timeparse.NewParser())
	p := pipeline.New(routing, extractor,
		report.NewClient(cfg),
		general.NewClient(cfg),
		fallback.New(routing, client, cfg),
		metrics)
	return NewRouter(p, routing, tables, metrics), nil
}

// Serve builds the service and runs it until ctx is cancelled
func Serve(ctx context.Context, cfg *config.Config) error {
	router, err := Build(cfg)
	if err != nil {
		return err
	}
	if cfg.WatchFiles {
		if err := router.cfg.Watch(ctx); err != nil {
			log.Printf("[server] routing config watch unavailable: %v", err)
		}
		if err := router.tables.Watch(ctx); err != nil {
			log.Printf("[server] geo table watch unavailable: %v", err)
		}
	}
	return Run(ctx, cfg.ListenAddr, cfg.ShutdownTimeout, router)
}
