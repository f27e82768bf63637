package config

import (
	"os"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graph.URI != "bolt://localhost:7687" {
		t.Errorf("expected default graph uri, got %q", cfg.Graph.URI)
	}
	if cfg.Performance.Workers < 10 || cfg.Performance.Workers > 20 {
		t.Errorf("expected default worker count in [10,20] per §4.2, got %d", cfg.Performance.Workers)
	}
	if cfg.LLM.Mode != "combined" {
		t.Errorf("expected default llm mode 'combined', got %q", cfg.LLM.Mode)
	}
	if cfg.Embeddings.Enabled {
		t.Error("expected embeddings disabled by default (§9 optional)")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestQueueCapacityOrDefault(t *testing.T) {
	cfg := Default()
	cfg.Performance.Workers = 10
	cfg.Performance.QueueCapacity = 0
	if got := cfg.QueueCapacityOrDefault(); got != 20 {
		t.Errorf("expected 2x worker count (20), got %d", got)
	}

	cfg.Performance.QueueCapacity = 5
	if got := cfg.QueueCapacityOrDefault(); got != 5 {
		t.Errorf("expected explicit queue capacity to win, got %d", got)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CORPUS_ROOT", "/data/smj")
	t.Setenv("PIPELINE_WORKERS", "8")
	t.Setenv("USE_FALLBACK_BACKEND", "true")
	t.Setenv("EMBEDDINGS_ENABLED", "yes")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Corpus.Root != "/data/smj" {
		t.Errorf("expected corpus root from env, got %q", cfg.Corpus.Root)
	}
	if cfg.Performance.Workers != 8 {
		t.Errorf("expected workers overridden by env, got %d", cfg.Performance.Workers)
	}
	if !cfg.LLM.UseFallback {
		t.Error("expected fallback backend enabled from env")
	}
	if !cfg.Embeddings.Enabled {
		t.Error("expected embeddings enabled from env ('yes')")
	}
}

func TestValidateRejectsBadMode(t *testing.T) {
	cfg := Default()
	cfg.LLM.Mode = "bogus"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bad llm mode")
	}
}

func TestValidateRejectsZeroWorkers(t *testing.T) {
	cfg := Default()
	cfg.Performance.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero workers")
	}
}

func TestToJSONRoundTrips(t *testing.T) {
	cfg := Default()
	data, err := cfg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty JSON")
	}
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
