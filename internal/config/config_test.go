package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.StorageBackend != BackendAuto {
		t.Errorf("StorageBackend = %q, want %q", cfg.StorageBackend, BackendAuto)
	}
	if cfg.MaxHistoryItems != 200 {
		t.Errorf("MaxHistoryItems = %d, want 200", cfg.MaxHistoryItems)
	}
	if cfg.DefaultTaxYear != 2024 {
		t.Errorf("DefaultTaxYear = %d, want 2024", cfg.DefaultTaxYear)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("MAX_HISTORY_ITEMS", "50")
	t.Setenv("DEFAULT_TAX_YEAR", "2025")
	t.Setenv("SQLITE_PATH", "/tmp/test.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorageBackend != BackendMemory {
		t.Errorf("StorageBackend = %q, want memory", cfg.StorageBackend)
	}
	if cfg.MaxHistoryItems != 50 {
		t.Errorf("MaxHistoryItems = %d, want 50", cfg.MaxHistoryItems)
	}
	if cfg.DefaultTaxYear != 2025 {
		t.Errorf("DefaultTaxYear = %d, want 2025", cfg.DefaultTaxYear)
	}
	if cfg.SQLitePath != "/tmp/test.db" {
		t.Errorf("SQLitePath = %q, want /tmp/test.db", cfg.SQLitePath)
	}
}

func TestLoadRejectsBadBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "postgres")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "STORAGE_BACKEND") {
		t.Errorf("Load error = %v, want STORAGE_BACKEND validation error", err)
	}
}

func TestLoadRejectsNonIntegerMax(t *testing.T) {
	t.Setenv("MAX_HISTORY_ITEMS", "lots")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "MAX_HISTORY_ITEMS") {
		t.Errorf("Load error = %v, want MAX_HISTORY_ITEMS parse error", err)
	}
}

func TestLoadRejectsZeroMax(t *testing.T) {
	t.Setenv("MAX_HISTORY_ITEMS", "0")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "MAX_HISTORY_ITEMS") {
		t.Errorf("Load error = %v, want MAX_HISTORY_ITEMS validation error", err)
	}
}
