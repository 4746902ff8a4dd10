package tui

import (
	"errors"
	"strconv"
	"strings"

	"pburn/internal/config"
	"pburn/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// setupValues collects first-run form answers before they are written to config.
type setupValues struct {
	dataDir     string
	varianceStr string
	riskStr     string
	themeName   string
}

func newSetupForm(defaultDataDir string, vals *setupValues) *huh.Form {
	vals.dataDir = defaultDataDir
	vals.varianceStr = "0.10"
	vals.riskStr = "5.0"
	vals.themeName = theme.Active.Name

	themeOptions := make([]huh.Option[string], len(theme.All))
	for i, t := range theme.All {
		themeOptions[i] = huh.NewOption(t.Name, t.Name)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Project data directory").
				Description("Where your project spend CSV files live.").
				Value(&vals.dataDir),

			huh.NewInput().
				Title("Variance threshold").
				Description("Flag projects whose spend deviates from budget by more than this fraction.").
				Value(&vals.varianceStr).
				Validate(validateFraction),

			huh.NewInput().
				Title("Risk score threshold").
				Value(&vals.riskStr).
				Validate(validateNumber),

			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOptions...).
				Value(&vals.themeName),
		),
	)
}

func validateFraction(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v <= 0 {
		return errors.New("enter a positive fraction, e.g. 0.10")
	}
	return nil
}

func validateNumber(s string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return errors.New("enter a number")
	}
	return nil
}

// applySetupConfig persists the form answers and applies them to the session.
func (a *App) applySetupConfig() {
	cfg, _ := config.Load()

	if dir := strings.TrimSpace(a.setupVals.dataDir); dir != "" {
		cfg.General.DataDir = dir
		a.dataDir = dir
	}

	if v, err := strconv.ParseFloat(strings.TrimSpace(a.setupVals.varianceStr), 64); err == nil && v > 0 {
		cfg.Thresholds.VariancePct = v
		a.varianceThreshold = v
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(a.setupVals.riskStr), 64); err == nil {
		cfg.Thresholds.RiskScore = v
		a.riskThreshold = v
	}

	if a.setupVals.themeName != "" {
		cfg.Appearance.Theme = a.setupVals.themeName
		theme.SetActive(a.setupVals.themeName)
	}

	_ = config.Save(cfg)
}
