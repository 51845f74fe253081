// ABOUTME: Hot-reloadable routing configuration loaded from a YAML file
// ABOUTME: Keyword tables, thresholds, and fallback stage tuning with defaults
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StageConfig tunes one fallback recovery stage
type StageConfig struct {
	Priority         int     `yaml:"priority"`
	SuccessThreshold float64 `yaml:"success_threshold"`
	Enabled          *bool   `yaml:"enabled,omitempty"`
}

// On reports whether the stage is enabled; nil means enabled
func (s StageConfig) On() bool {
	return s.Enabled == nil || *s.Enabled
}

// GeoThresholds holds per-level fuzzy match acceptance scores (0-100)
type GeoThresholds struct {
	City     int `yaml:"city"`
	District int `yaml:"district"`
	Station  int `yaml:"station"`
}

// RoutingConfig is everything the routers and resolvers read per request.
// Loaded from YAML, merged over defaults, swapped atomically on reload.
type RoutingConfig struct {
	// Primary router
	TriggerTerms        []string `yaml:"trigger_terms"`
	StructuredKeywords  []string `yaml:"structured_keywords"`
	SimilarityThreshold float64  `yaml:"similarity_threshold"`
	StructuredExemplars []string `yaml:"structured_exemplars"`
	GeneralExemplars    []string `yaml:"general_exemplars"`

	// Secondary router
	ComparisonKeywords []string `yaml:"comparison_keywords"`

	// Geo resolver
	Geo           GeoThresholds `yaml:"geo_thresholds"`
	MinConfidence int           `yaml:"min_confidence"`

	// Multi-location handling: "accept" or "clarify"
	MultiLocationMode string `yaml:"multi_location_mode"`

	// Reporting API parameter inference
	TimeTypeKeywords   map[string]int `yaml:"time_type_keywords"`
	DataSourceKeywords map[string]int `yaml:"data_source_keywords"`

	// Fallback stages keyed by stage name
	Fallback map[string]StageConfig `yaml:"fallback"`
}

// DefaultRouting returns the built-in routing configuration
func DefaultRouting() *RoutingConfig {
	enabled := true
	return &RoutingConfig{
		TriggerTerms: []string{
			"排名", "排行", "最差", "最好", "最高", "最低",
			"哪些", "哪个", "趋势", "分析", "原因", "为什么", "统计",
		},
		StructuredKeywords: []string{
			"报表", "报告", "周报", "月报", "季报", "年报",
			"空气质量", "AQI", "PM2.5", "PM10", "优良率", "达标",
			"同比", "环比", "对比", "汇总",
		},
		SimilarityThreshold: 0.3,
		StructuredExemplars: []string{
			"查询上周的空气质量周报",
			"生成本月空气质量月报",
			"武汉市上个月空气质量同比情况",
			"东湖站昨天的空气质量报告",
		},
		GeneralExemplars: []string{
			"全省哪些城市空气质量最差",
			"分析近期污染变化趋势的原因",
			"PM2.5浓度排名前十的站点",
		},
		ComparisonKeywords: []string{
			"环比", "同比", "同期", "对比", "相比", "比较", "变化",
		},
		Geo:               GeoThresholds{City: 70, District: 65, Station: 60},
		MinConfidence:     60,
		MultiLocationMode: "accept",
		TimeTypeKeywords: map[string]int{
			"周报": 3,
			"月报": 4,
			"季报": 5,
			"年报": 7,
		},
		DataSourceKeywords: map[string]int{
			"原始实况": 0,
			"审核实况": 1,
			"原始标况": 2,
			"审核标况": 3,
		},
		Fallback: map[string]StageConfig{
			"time_parsing":             {Priority: 1, SuccessThreshold: 0.7, Enabled: &enabled},
			"contrast_time_recovery":   {Priority: 1, SuccessThreshold: 0.8, Enabled: &enabled},
			"parameter_supplement":     {Priority: 2, SuccessThreshold: 0.8, Enabled: &enabled},
			"api_error_recovery":       {Priority: 3, SuccessThreshold: 0.6, Enabled: &enabled},
			"result_validation":        {Priority: 4, SuccessThreshold: 0.5, Enabled: &enabled},
			"complex_query_processing": {Priority: 2, SuccessThreshold: 0.7, Enabled: &enabled},
		},
	}
}

// LoadRouting reads the YAML file at path and merges it over the defaults.
// A missing file is not an error; the defaults are returned as-is.
func LoadRouting(path string) (*RoutingConfig, error) {
	cfg := DefaultRouting()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read routing config: %w", err)
	}

	var file RoutingConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse routing config %s: %w", path, err)
	}

	cfg.merge(&file)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("routing config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *RoutingConfig) merge(o *RoutingConfig) {
	if len(o.TriggerTerms) > 0 {
		c.TriggerTerms = o.TriggerTerms
	}
	if len(o.StructuredKeywords) > 0 {
		c.StructuredKeywords = o.StructuredKeywords
	}
	if o.SimilarityThreshold > 0 {
		c.SimilarityThreshold = o.SimilarityThreshold
	}
	if len(o.StructuredExemplars) > 0 {
		c.StructuredExemplars = o.StructuredExemplars
	}
	if len(o.GeneralExemplars) > 0 {
		c.GeneralExemplars = o.GeneralExemplars
	}
	if len(o.ComparisonKeywords) > 0 {
		c.ComparisonKeywords = o.ComparisonKeywords
	}
	if o.Geo.City > 0 {
		c.Geo.City = o.Geo.City
	}
	if o.Geo.District > 0 {
		c.Geo.District = o.Geo.District
	}
	if o.Geo.Station > 0 {
		c.Geo.Station = o.Geo.Station
	}
	if o.MinConfidence > 0 {
		c.MinConfidence = o.MinConfidence
	}
	if o.MultiLocationMode != "" {
		c.MultiLocationMode = o.MultiLocationMode
	}
	if len(o.TimeTypeKeywords) > 0 {
		c.TimeTypeKeywords = o.TimeTypeKeywords
	}
	if len(o.DataSourceKeywords) > 0 {
		c.DataSourceKeywords = o.DataSourceKeywords
	}
	for name, sc := range o.Fallback {
		base := c.Fallback[name]
		if sc.Priority > 0 {
			base.Priority = sc.Priority
		}
		if sc.SuccessThreshold > 0 {
			base.SuccessThreshold = sc.SuccessThreshold
		}
		if sc.Enabled != nil {
			base.Enabled = sc.Enabled
		}
		c.Fallback[name] = base
	}
}

func (c *RoutingConfig) validate() error {
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be 0-1, got %f", c.SimilarityThreshold)
	}
	if c.MultiLocationMode != "accept" && c.MultiLocationMode != "clarify" {
		return fmt.Errorf("multi_location_mode must be accept or clarify, got %q", c.MultiLocationMode)
	}
	for name, sc := range c.Fallback {
		if sc.SuccessThreshold < 0 || sc.SuccessThreshold > 1 {
			return fmt.Errorf("fallback %s: success_threshold must be 0-1, got %f", name, sc.SuccessThreshold)
		}
	}
	return nil
}

// StageThreshold returns the success threshold for a fallback stage,
// falling back to base when the stage has no entry.
func (c *RoutingConfig) StageThreshold(name string, base float64) float64 {
	if sc, ok := c.Fallback[name]; ok && sc.SuccessThreshold > 0 {
		return sc.SuccessThreshold
	}
	return base
}

// StagePriority returns the escalation priority for a fallback stage,
// falling back to base when the stage has no entry. Lower runs first.
func (c *RoutingConfig) StagePriority(name string, base int) int {
	if sc, ok := c.Fallback[name]; ok && sc.Priority > 0 {
		return sc.Priority
	}
	return base
}

// LevelThreshold returns the fuzzy acceptance score for a geo level name
func (c *RoutingConfig) LevelThreshold(level string) int {
	switch level {
	case "city":
		return c.Geo.City
	case "district":
		return c.Geo.District
	case "station":
		return c.Geo.Station
	}
	return c.MinConfidence
}
