package tui

import (
	"fmt"
	"strconv"
	"strings"

	"pburn/internal/config"
	"pburn/internal/tui/components"
	"pburn/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const settingsFieldCount = 4

const (
	settingDataDir = iota
	settingVariance
	settingRiskScore
	settingTheme
)

// settingsState tracks cursor and inline editing on the settings tab.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saveErr error
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	// Theme cycles in place, no text input needed.
	if a.settings.cursor == settingTheme {
		cfg, _ := config.Load()
		next := nextThemeName(theme.Active.Name)
		theme.SetActive(next)
		cfg.Appearance.Theme = next
		a.settings.saveErr = config.Save(cfg)
		return a, nil
	}

	ti := textinput.New()
	ti.CharLimit = 128
	ti.Width = 40

	switch a.settings.cursor {
	case settingDataDir:
		ti.SetValue(a.dataDir)
	case settingVariance:
		ti.SetValue(strconv.FormatFloat(a.varianceThreshold, 'f', -1, 64))
	case settingRiskScore:
		ti.SetValue(strconv.FormatFloat(a.riskThreshold, 'f', -1, 64))
	}
	ti.Focus()

	a.settings.editing = true
	a.settings.input = ti
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.settings.editing = false
		return a, nil

	case "enter":
		a.settings.editing = false
		value := strings.TrimSpace(a.settings.input.Value())
		if value == "" {
			return a, nil
		}

		cfg, _ := config.Load()

		switch a.settings.cursor {
		case settingDataDir:
			a.dataDir = value
			cfg.General.DataDir = value
			a.settings.saveErr = config.Save(cfg)
			a.refreshing = true
			return a, refreshDataCmd(a.dataDir, a.useCache)

		case settingVariance:
			if v, err := strconv.ParseFloat(value, 64); err == nil && v > 0 {
				a.varianceThreshold = v
				cfg.Thresholds.VariancePct = v
				a.settings.saveErr = config.Save(cfg)
				a.recompute()
			}

		case settingRiskScore:
			if v, err := strconv.ParseFloat(value, 64); err == nil {
				a.riskThreshold = v
				cfg.Thresholds.RiskScore = v
				a.settings.saveErr = config.Save(cfg)
				a.recompute()
			}
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

func nextThemeName(current string) string {
	for i, t := range theme.All {
		if t.Name == current {
			return theme.All[(i+1)%len(theme.All)].Name
		}
	}
	return theme.All[0].Name
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	fields := []struct {
		label string
		value string
	}{
		{"Data directory", a.dataDir},
		{"Variance threshold", fmt.Sprintf("%.2f", a.varianceThreshold)},
		{"Risk score threshold", fmt.Sprintf("%.1f", a.riskThreshold)},
		{"Theme", theme.Active.Name},
	}

	var b strings.Builder
	for i, f := range fields {
		marker := "  "
		style := valueStyle
		if i == a.settings.cursor {
			marker = "> "
			style = selStyle
		}

		b.WriteString(style.Render(marker))
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-22s", f.label)))

		if a.settings.editing && i == a.settings.cursor {
			b.WriteString(a.settings.input.View())
		} else {
			b.WriteString(style.Render(f.value))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if a.settings.editing {
		b.WriteString(dimStyle.Render("  Enter to save, Esc to cancel"))
	} else {
		b.WriteString(dimStyle.Render("  j/k to select, Enter to edit (theme cycles)"))
	}

	if a.settings.saveErr != nil {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(fmt.Sprintf("  Could not save config: %v", a.settings.saveErr)))
	}

	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("  Config file: " + config.Path()))

	return components.ContentCard("Settings", b.String(), cw)
}
