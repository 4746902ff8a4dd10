// Package config loads and saves pburn configuration from a TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all pburn configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Thresholds ThresholdsConfig `toml:"thresholds"`
	Appearance AppearanceConfig `toml:"appearance"`
	Currency   CurrencyConfig   `toml:"currency"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataDir string `toml:"data_dir,omitempty"`
	// DefaultDays limits analysis to the last N days of spend entries when
	// no --days flag is given. Zero means no window.
	DefaultDays int `toml:"default_days"`
}

// ThresholdsConfig holds the risk classifier thresholds.
type ThresholdsConfig struct {
	VariancePct float64 `toml:"variance_pct"`
	RiskScore   float64 `toml:"risk_score"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// CurrencyConfig holds display formatting settings.
type CurrencyConfig struct {
	Symbol string `toml:"symbol"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{},
		Thresholds: ThresholdsConfig{
			VariancePct: 0.10,
			RiskScore:   5.0,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Currency: CurrencyConfig{
			Symbol: "$",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pburn")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Zero-valued thresholds after parse fall back to defaults so a sparse file
// never disables the classifier entirely.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	defaults := DefaultConfig()
	if cfg.Thresholds.VariancePct <= 0 {
		cfg.Thresholds.VariancePct = defaults.Thresholds.VariancePct
	}
	if cfg.Thresholds.RiskScore <= 0 {
		cfg.Thresholds.RiskScore = defaults.Thresholds.RiskScore
	}
	if cfg.Currency.Symbol == "" {
		cfg.Currency.Symbol = defaults.Currency.Symbol
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// DataDir resolves the spend data directory: flag value wins, then config,
// then ./data under the working directory.
func DataDir(cfg Config, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg.General.DataDir != "" {
		return cfg.General.DataDir
	}
	wd, _ := os.Getwd()
	return filepath.Join(wd, "data")
}
