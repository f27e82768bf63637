// Package config provides configuration management for the pipeline.
//
// Configuration can be loaded from multiple sources (in order of precedence):
//  1. Environment variables (highest priority)
//  2. Configuration file (JSON)
//  3. Default values (lowest priority)
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the complete pipeline configuration.
type Config struct {
	Corpus      CorpusConfig      `json:"corpus"`
	Graph       GraphConfig       `json:"graph"`
	LLM         LLMConfig         `json:"llm"`
	Embeddings  EmbeddingsConfig  `json:"embeddings"`
	Cache       CacheConfig       `json:"cache"`
	Performance PerformanceConfig `json:"performance"`
	Progress    ProgressConfig    `json:"progress"`
	Logging     LoggingConfig     `json:"logging"`
}

// CorpusConfig locates and filters the PDF corpus (§4.1, §6.1).
type CorpusConfig struct {
	Root      string `json:"root"`
	YearStart int    `json:"year_start,omitempty"`
	YearEnd   int    `json:"year_end,omitempty"`
	Resume    bool   `json:"resume"`
}

// GraphConfig configures the Neo4j driver (§6.3).
type GraphConfig struct {
	URI            string        `json:"uri"`
	Username       string        `json:"username"`
	Password       string        `json:"password"`
	Database       string        `json:"database"`
	PoolSize       int           `json:"pool_size"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
	AcquireTimeout time.Duration `json:"acquire_timeout"`
}

// LLMConfig configures the primary and fallback LLM backends (§4.3, §6.2).
type LLMConfig struct {
	PrimaryBaseURL      string        `json:"primary_base_url"`
	PrimaryModel        string        `json:"primary_model"`
	PrimaryAPIKey       string        `json:"-"`
	UseFallback         bool          `json:"use_fallback_backend"`
	FallbackBaseURL     string        `json:"fallback_base_url,omitempty"`
	FallbackModel       string        `json:"fallback_model,omitempty"`
	FallbackAPIKey      string        `json:"-"`
	Mode                string        `json:"mode"` // "combined" or "single_entity"
	Temperature         float64       `json:"temperature"`
	RequestTimeout      time.Duration `json:"request_timeout"`
	SmallRequestTimeout time.Duration `json:"small_request_timeout"`
	MaxRetries          int           `json:"max_retries"`
	PromptVersion       string        `json:"prompt_version"`
}

// EmbeddingsConfig toggles the optional embedding model (§4.5, §9).
type EmbeddingsConfig struct {
	Enabled   bool    `json:"enabled"`
	Provider  string  `json:"provider"`
	Model     string  `json:"model"`
	APIKey    string  `json:"-"`
	Dimension int     `json:"dimension"`
	Threshold float64 `json:"threshold"`
}

// CacheConfig configures the two-tier response cache (§2.4, §4.3).
type CacheConfig struct {
	MemoryEntries int           `json:"memory_entries"`
	DiskPath      string        `json:"disk_path"`
	TTL           time.Duration `json:"ttl"`
}

// PerformanceConfig tunes the worker pool (§4.2, §5).
type PerformanceConfig struct {
	Workers         int           `json:"workers"`
	QueueCapacity   int           `json:"queue_capacity"` // 0 = 2x workers
	MonitorInterval time.Duration `json:"monitor_interval"`
	CheckpointBatch int           `json:"checkpoint_batch"`
}

// ProgressConfig locates the progress/stats JSON files (§4.9, §6.1).
type ProgressConfig struct {
	ProgressPath string `json:"progress_path"`
	StatsPath    string `json:"stats_path"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `json:"level"`
	Debug bool   `json:"debug"`
}

// Default returns the default pipeline configuration.
func Default() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Resume: true,
		},
		Graph: GraphConfig{
			URI:            "bolt://localhost:7687",
			Username:       "neo4j",
			Password:       "password",
			Database:       "neo4j",
			PoolSize:       50,
			ConnectTimeout: 30 * time.Second,
			AcquireTimeout: 60 * time.Second,
		},
		LLM: LLMConfig{
			PrimaryBaseURL:      "https://api.openai.com/v1",
			PrimaryModel:        "gpt-4o-mini",
			Mode:                "combined",
			Temperature:         0.1,
			RequestTimeout:      120 * time.Second,
			SmallRequestTimeout: 90 * time.Second,
			MaxRetries:          3,
			PromptVersion:       "2.0",
		},
		Embeddings: EmbeddingsConfig{
			Enabled:   false,
			Provider:  "local",
			Model:     "default",
			Dimension: 384,
			Threshold: 0.85,
		},
		Cache: CacheConfig{
			MemoryEntries: 2000,
			DiskPath:      "./cache",
			TTL:           30 * 24 * time.Hour,
		},
		Performance: PerformanceConfig{
			Workers:         15,
			QueueCapacity:   0,
			MonitorInterval: 30 * time.Second,
			CheckpointBatch: 5,
		},
		Progress: ProgressConfig{
			ProgressPath: "high_performance_progress.json",
			StatsPath:    "high_performance_stats.json",
		},
		Logging: LoggingConfig{
			Level: "info",
			Debug: false,
		},
	}
}

// Load loads configuration from defaults overlaid with environment
// variables, then validates it.
func Load() (*Config, error) {
	cfg := Default()
	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads a JSON configuration file, then overlays environment
// variables on top, matching the teacher's file-then-env precedence.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromEnv applies the §6.5 environment variables on top of cfg.
func (c *Config) loadFromEnv() error {
	if v := os.Getenv("CORPUS_ROOT"); v != "" {
		c.Corpus.Root = v
	}
	if v := os.Getenv("GRAPH_URI"); v != "" {
		c.Graph.URI = v
	}
	if v := os.Getenv("GRAPH_USERNAME"); v != "" {
		c.Graph.Username = v
	}
	if v := os.Getenv("GRAPH_PASSWORD"); v != "" {
		c.Graph.Password = v
	}
	if v := os.Getenv("GRAPH_DATABASE"); v != "" {
		c.Graph.Database = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.PrimaryAPIKey = v
	}
	if v := os.Getenv("LLM_FALLBACK_API_KEY"); v != "" {
		c.LLM.FallbackAPIKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.PrimaryModel = v
	}
	if v := os.Getenv("USE_FALLBACK_BACKEND"); v != "" {
		c.LLM.UseFallback = parseBool(v)
	}
	if v := os.Getenv("EMBEDDINGS_ENABLED"); v != "" {
		c.Embeddings.Enabled = parseBool(v)
	}
	if v := os.Getenv("VOYAGE_API_KEY"); v != "" {
		c.Embeddings.APIKey = v
	}
	if v := os.Getenv("PIPELINE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Performance.Workers = n
		}
	}
	if v := os.Getenv("PIPELINE_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("DEBUG"); v != "" {
		c.Logging.Debug = parseBool(v)
	}
	return nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Performance.Workers < 1 {
		return fmt.Errorf("performance.workers must be >= 1")
	}
	if c.Graph.PoolSize < 1 {
		return fmt.Errorf("graph.pool_size must be >= 1")
	}
	if c.LLM.Mode != "combined" && c.LLM.Mode != "single_entity" {
		return fmt.Errorf("llm.mode must be 'combined' or 'single_entity'")
	}
	if c.LLM.MaxRetries < 1 {
		return fmt.Errorf("llm.max_retries must be >= 1")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	if c.Embeddings.Enabled && c.Embeddings.Threshold <= 0 {
		return fmt.Errorf("embeddings.threshold must be > 0 when embeddings are enabled")
	}
	return nil
}

// QueueCapacityOrDefault returns the configured queue capacity, or 2x the
// worker count when unset (§4.1 "bounded (capacity = 2x worker count)").
func (c *Config) QueueCapacityOrDefault() int {
	if c.Performance.QueueCapacity > 0 {
		return c.Performance.QueueCapacity
	}
	return 2 * c.Performance.Workers
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on" || s == "enabled"
}

// ToJSON serializes the configuration to indented JSON.
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
