// ABOUTME: HTTP surface exposing the query endpoint and operational routes
// ABOUTME: Every response is JSON; the query envelope never leaks Go errors
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ecosense/aqroute/internal/config"
	"github.com/ecosense/aqroute/internal/geo"
	"github.com/ecosense/aqroute/internal/models"
	"github.com/ecosense/aqroute/internal/monitor"
	"github.com/ecosense/aqroute/internal/pipeline"
)

const maxQueryBody = 64 << 10

// Router builds the HTTP handlers for the service
type Router struct {
	pipeline *pipeline.Pipeline
	cfg      *config.Store
	tables   *geo.Store
	metrics  *monitor.Metrics
	started  time.Time
}

func NewRouter(p *pipeline.Pipeline, cfg *config.Store, tables *geo.Store, metrics *monitor.Metrics) *Router {
	return &Router{
		pipeline: p,
		cfg:      cfg,
		tables:   tables,
		metrics:  metrics,
		started:  time.Now(),
	}
}

func (r *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/query", r.query)
	mux.HandleFunc("/health", r.health)
	mux.HandleFunc("/stats", r.stats)
	mux.HandleFunc("/reload", r.reload)
}

func (r *Router) query(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var body models.QueryRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxQueryBody))
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if body.Question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}
	respondJSON(w, r.pipeline.Handle(req.Context(), body))
}

func (r *Router) health(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, map[string]any{
		"status":          "ok",
		"uptime_seconds":  int64(time.Since(r.started).Seconds()),
		"routing_version": r.cfg.Version(),
		"geo_version":     r.tables.Version(),
		"geo_entries":     r.tables.Get().Len(),
	})
}

func (r *Router) stats(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, r.metrics.Snap())
}

// reload re-reads the routing config and geo table from disk. A failed
// reload keeps the running snapshots and reports the error.
func (r *Router) reload(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var errs []string
	if err := r.cfg.Reload(); err != nil {
		errs = append(errs, "routing: "+err.Error())
	}
	if err := r.tables.Reload(); err != nil {
		errs = append(errs, "geo: "+err.Error())
	}
	if len(errs) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		respondRaw(w, map[string]any{"reloaded": false, "errors": errs})
		return
	}
	respondJSON(w, map[string]any{
		"reloaded":        true,
		"routing_version": r.cfg.Version(),
		"geo_version":     r.tables.Version(),
	})
}

// Run serves the router until the context is cancelled, then shuts down
// gracefully within the configured timeout.
func Run(ctx context.Context, addr string, shutdownTimeout time.Duration, router *Router) error {
	mux := http.NewServeMux()
	router.Register(mux)
	srv := &http.Server{Addr: addr, Handler: mux}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shCtx)
	}()

	log.Printf("[server] listening on %s", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	respondRaw(w, v)
}

func respondRaw(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[server] encode response: %v", err)
	}
}
