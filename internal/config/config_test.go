package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"AETHEL_DIR", "AETHEL_HISTORY_LIMIT", "AETHEL_NO_COLOR", "AETHEL_LOG_LEVEL"} {
		// Setenv registers the restore; Unsetenv clears it for the test body.
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dir != "" || cfg.HistoryLimit != 200 || cfg.NoColor || cfg.LogLevel != "warn" {
		t.Fatalf("defaults: %+v", cfg)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("AETHEL_DIR", "/tmp/story/.aethel")
	t.Setenv("AETHEL_HISTORY_LIMIT", "25")
	t.Setenv("AETHEL_NO_COLOR", "true")
	t.Setenv("AETHEL_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dir != "/tmp/story/.aethel" || cfg.HistoryLimit != 25 || !cfg.NoColor || cfg.LogLevel != "debug" {
		t.Fatalf("env: %+v", cfg)
	}
}

func TestLoadClampsHistoryLimit(t *testing.T) {
	t.Setenv("AETHEL_HISTORY_LIMIT", "-3")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HistoryLimit != 200 {
		t.Fatalf("clamp: %d", cfg.HistoryLimit)
	}
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("AETHEL_HISTORY_LIMIT", "lots")
	if _, err := Load(); err == nil {
		t.Fatalf("malformed int must fail")
	}
}
