// ABOUTME: Tests for YAML routing config loading and merging
// ABOUTME: Verifies defaults survive partial files and reloads swap atomically

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRouting(t *testing.T) {
	cfg := DefaultRouting()

	if cfg.SimilarityThreshold != 0.3 {
		t.Errorf("SimilarityThreshold = %f, want 0.3", cfg.SimilarityThreshold)
	}
	if cfg.Geo.City != 70 || cfg.Geo.District != 65 || cfg.Geo.Station != 60 {
		t.Errorf("Geo thresholds = %+v, want 70/65/60", cfg.Geo)
	}
	if cfg.MultiLocationMode != "accept" {
		t.Errorf("MultiLocationMode = %q, want accept", cfg.MultiLocationMode)
	}
	if got := cfg.StageThreshold("time_parsing", 0.6); got != 0.7 {
		t.Errorf("time_parsing threshold = %f, want 0.7", got)
	}
	if got := cfg.StageThreshold("result_validation", 0.6); got != 0.5 {
		t.Errorf("result_validation threshold = %f, want 0.5", got)
	}
	if got := cfg.StageThreshold("unknown_stage", 0.6); got != 0.6 {
		t.Errorf("unknown stage should use base threshold, got %f", got)
	}
	if cfg.TimeTypeKeywords["月报"] != 4 {
		t.Errorf("月报 time type = %d, want 4", cfg.TimeTypeKeywords["月报"])
	}
	if cfg.DataSourceKeywords["审核实况"] != 1 {
		t.Errorf("审核实况 source = %d, want 1", cfg.DataSourceKeywords["审核实况"])
	}
}

func TestLoadRouting_MissingFile(t *testing.T) {
	cfg, err := LoadRouting(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.SimilarityThreshold != 0.3 {
		t.Errorf("SimilarityThreshold = %f, want default 0.3", cfg.SimilarityThreshold)
	}
}

func TestLoadRouting_PartialMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routing.yaml")
	contents := `
similarity_threshold: 0.4
geo_thresholds:
  station: 55
fallback:
  time_parsing:
    success_threshold: 0.9
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadRouting(path)
	if err != nil {
		t.Fatalf("LoadRouting() failed: %v", err)
	}

	if cfg.SimilarityThreshold != 0.4 {
		t.Errorf("SimilarityThreshold = %f, want 0.4", cfg.SimilarityThreshold)
	}
	if cfg.Geo.Station != 55 {
		t.Errorf("Geo.Station = %d, want 55", cfg.Geo.Station)
	}
	// Untouched defaults survive the merge
	if cfg.Geo.City != 70 {
		t.Errorf("Geo.City = %d, want default 70", cfg.Geo.City)
	}
	if got := cfg.StageThreshold("time_parsing", 0.6); got != 0.9 {
		t.Errorf("time_parsing threshold = %f, want 0.9", got)
	}
	if got := cfg.StageThreshold("parameter_supplement", 0.6); got != 0.8 {
		t.Errorf("parameter_supplement threshold = %f, want default 0.8", got)
	}
	if len(cfg.ComparisonKeywords) == 0 {
		t.Error("comparison keywords should keep defaults")
	}
}

func TestLoadRouting_InvalidMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routing.yaml")
	if err := os.WriteFile(path, []byte("multi_location_mode: explode\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRouting(path); err == nil {
		t.Error("invalid multi_location_mode should fail validation")
	}
}

func TestStore_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routing.yaml")
	if err := os.WriteFile(path, []byte("similarity_threshold: 0.35\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	if got := store.Get().SimilarityThreshold; got != 0.35 {
		t.Errorf("SimilarityThreshold = %f, want 0.35", got)
	}
	v := store.Version()

	if err := os.WriteFile(path, []byte("similarity_threshold: 0.5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload() failed: %v", err)
	}
	if got := store.Get().SimilarityThreshold; got != 0.5 {
		t.Errorf("after reload SimilarityThreshold = %f, want 0.5", got)
	}
	if store.Version() != v+1 {
		t.Errorf("Version = %d, want %d", store.Version(), v+1)
	}
}

func TestStore_ReloadKeepsSnapshotOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routing.yaml")
	if err := os.WriteFile(path, []byte("similarity_threshold: 0.35\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("similarity_threshold: [broken\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := store.Reload(); err == nil {
		t.Fatal("Reload() of broken YAML should fail")
	}
	if got := store.Get().SimilarityThreshold; got != 0.35 {
		t.Errorf("failed reload should keep old snapshot, got %f", got)
	}
}

func TestStagePriority(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routing.yaml")
	contents := `
fallback:
  parameter_supplement:
    priority: 9
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadRouting(path)
	if err != nil {
		t.Fatalf("LoadRouting() failed: %v", err)
	}

	if got := cfg.StagePriority("parameter_supplement", 1); got != 9 {
		t.Errorf("parameter_supplement priority = %d, want 9", got)
	}
	// A priority-only override keeps the default threshold
	if got := cfg.StageThreshold("parameter_supplement", 0.6); got != 0.8 {
		t.Errorf("parameter_supplement threshold = %f, want default 0.8", got)
	}
	if got := cfg.StagePriority("time_parsing", 1); got != 1 {
		t.Errorf("time_parsing priority = %d, want default 1", got)
	}
	if got := cfg.StagePriority("no_such_stage", 7); got != 7 {
		t.Errorf("unknown stage priority = %d, want base 7", got)
	}
}
