package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("EVIDENCE_ROOTS", "")
	t.Setenv("FUZZY_THRESHOLD", "")
	t.Setenv("FRESHNESS_WINDOW_DAYS", "")
	t.Setenv("MATCH_WORKERS", "")

	cfg := Load()
	if !reflect.DeepEqual(cfg.EvidenceRoots, []string{"./data/evidence"}) {
		t.Fatalf("expected default evidence root, got %v", cfg.EvidenceRoots)
	}
	if cfg.FuzzyThreshold != 0.3 {
		t.Fatalf("expected default fuzzy threshold 0.3, got %v", cfg.FuzzyThreshold)
	}
	if cfg.FreshnessWindowDays != 365 {
		t.Fatalf("expected default freshness window 365, got %d", cfg.FreshnessWindowDays)
	}
	if cfg.MatchWorkers != 4 {
		t.Fatalf("expected default match workers 4, got %d", cfg.MatchWorkers)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("EVIDENCE_ROOTS", "/mnt/shared/docs, /mnt/archive ,")
	t.Setenv("FUZZY_THRESHOLD", "0.45")
	t.Setenv("WORKER_RUNS_PER_MINUTE", "5")

	cfg := Load()
	want := []string{"/mnt/shared/docs", "/mnt/archive"}
	if !reflect.DeepEqual(cfg.EvidenceRoots, want) {
		t.Fatalf("EvidenceRoots = %v, want %v", cfg.EvidenceRoots, want)
	}
	if cfg.FuzzyThreshold != 0.45 {
		t.Fatalf("FuzzyThreshold = %v, want 0.45", cfg.FuzzyThreshold)
	}
	if cfg.WorkerRunsPerMinute != 5 {
		t.Fatalf("WorkerRunsPerMinute = %d, want 5", cfg.WorkerRunsPerMinute)
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("FUZZY_THRESHOLD", "not-a-number")
	t.Setenv("MATCH_WORKERS", "many")

	cfg := Load()
	if cfg.FuzzyThreshold != 0.3 {
		t.Fatalf("malformed float must fall back, got %v", cfg.FuzzyThreshold)
	}
	if cfg.MatchWorkers != 4 {
		t.Fatalf("malformed int must fall back, got %d", cfg.MatchWorkers)
	}
}
