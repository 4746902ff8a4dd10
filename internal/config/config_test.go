package config

import (
	"os"
	"path/filepath"
	"testing"
)

func withTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, "pburn")
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	withTempConfigDir(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Thresholds.VariancePct != 0.10 {
		t.Errorf("VariancePct = %v, want 0.10", cfg.Thresholds.VariancePct)
	}
	if cfg.Thresholds.RiskScore != 5.0 {
		t.Errorf("RiskScore = %v, want 5.0", cfg.Thresholds.RiskScore)
	}
	if cfg.Appearance.Theme != "flexoki-dark" {
		t.Errorf("Theme = %q", cfg.Appearance.Theme)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	withTempConfigDir(t)

	cfg := DefaultConfig()
	cfg.General.DataDir = "/srv/projects"
	cfg.Thresholds.VariancePct = 0.25
	cfg.Thresholds.RiskScore = 10
	cfg.Appearance.Theme = "terminal"

	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after save")
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.General.DataDir != "/srv/projects" {
		t.Errorf("DataDir = %q", loaded.General.DataDir)
	}
	if loaded.Thresholds.VariancePct != 0.25 || loaded.Thresholds.RiskScore != 10 {
		t.Errorf("thresholds = %+v", loaded.Thresholds)
	}
	if loaded.Appearance.Theme != "terminal" {
		t.Errorf("Theme = %q", loaded.Appearance.Theme)
	}
}

func TestLoad_SparseFileKeepsThresholdDefaults(t *testing.T) {
	configDir := withTempConfigDir(t)

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatal(err)
	}
	body := "[general]\ndata_dir = \"/srv/x\"\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Thresholds.VariancePct != 0.10 || cfg.Thresholds.RiskScore != 5.0 {
		t.Errorf("thresholds = %+v, want defaults preserved", cfg.Thresholds)
	}
	if cfg.General.DataDir != "/srv/x" {
		t.Errorf("DataDir = %q", cfg.General.DataDir)
	}
}

func TestDataDir_Precedence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.DataDir = "/from/config"

	if got := DataDir(cfg, "/from/flag"); got != "/from/flag" {
		t.Errorf("flag should win, got %q", got)
	}
	if got := DataDir(cfg, ""); got != "/from/config" {
		t.Errorf("config should win without flag, got %q", got)
	}
}
