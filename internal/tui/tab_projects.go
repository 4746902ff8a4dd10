package tui

import (
	"fmt"
	"strings"

	"pburn/internal/cli"
	"pburn/internal/kpi"
	"pburn/internal/tui/components"
	"pburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// renderProjectsTab renders the ranked project list beside a detail pane for
// the selected project.
func (a App) renderProjectsTab(cw, contentH int) string {
	t := theme.Active

	if len(a.snap.Rows) == 0 {
		mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		return "\n" + mutedStyle.Render("  No projects to show.")
	}

	listW := cw * 2 / 5
	if listW < 28 {
		listW = 28
	}
	detailW := cw - listW

	list := a.renderProjectList(listW, contentH)
	detail := a.renderProjectDetail(detailW)

	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

func (a App) renderProjectList(w, contentH int) string {
	t := theme.Active

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Width(w)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true).Width(w)
	riskMark := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Render("●")
	okMark := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface).Render("○")

	// Keep the cursor visible inside the viewport
	visible := contentH - 2
	if visible < 3 {
		visible = 3
	}
	offset := 0
	if a.projCursor >= visible {
		offset = a.projCursor - visible + 1
	}

	var b strings.Builder
	for i := offset; i < len(a.snap.Rows) && i-offset < visible; i++ {
		row := a.snap.Rows[i]
		name := row.ProjectName
		if name == "" {
			name = row.ProjectID
		}

		mark := okMark
		if a.snap.Assessments[i].IsRisky {
			mark = riskMark
		}

		line := fmt.Sprintf(" %s %s  %s", mark, truncStr(name, w-16), cli.FormatScore(row.RiskScore))
		if i == a.projCursor {
			b.WriteString(selStyle.Render(line))
		} else {
			b.WriteString(rowStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (a App) renderProjectDetail(w int) string {
	t := theme.Active

	row := a.snap.Rows[a.projCursor]
	assessment := a.snap.Assessments[a.projCursor]
	series, ok := a.seriesByID[row.ProjectID]
	if !ok {
		return ""
	}

	record, err := kpi.Compute(series)
	if err != nil {
		errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
		return errStyle.Render(fmt.Sprintf("  %v", err))
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	riskStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	okStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)

	line := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-14s", label)) + valueStyle.Render(value)
	}

	var b strings.Builder
	b.WriteString(line("Budget", cli.FormatMoney(record.Budget)))
	b.WriteString("\n")
	b.WriteString(line("Spend", fmt.Sprintf("%s (as of %s)",
		cli.FormatMoney(record.LatestSpend), cli.FormatDate(record.LatestDate))))
	b.WriteString("\n")
	b.WriteString(line("Execution", cli.FormatPercent(record.PctExecution)))
	b.WriteString("\n")
	b.WriteString(line("Variance", cli.FormatPercent(record.VariancePct)))
	b.WriteString("\n")
	b.WriteString(line("Burn rate", cli.FormatMoney(record.BurnRate)+"/day"))
	b.WriteString("\n")
	b.WriteString(line("Elapsed", fmt.Sprintf("%s of %s",
		cli.FormatDays(record.DaysElapsed), cli.FormatDays(record.DaysTotal))))
	b.WriteString("\n")
	b.WriteString(line("Forecast", cli.FormatMoney(record.ForecastToComplete)))
	b.WriteString("\n")
	b.WriteString(line("Risk score", cli.FormatScore(record.RiskScore)))
	b.WriteString("\n\n")

	if assessment.IsRisky {
		b.WriteString(riskStyle.Render("AT RISK"))
	} else {
		b.WriteString(okStyle.Render("on track"))
	}
	b.WriteString("\n")
	for _, reason := range assessment.Reasons {
		b.WriteString(labelStyle.Render("  · " + reason))
		b.WriteString("\n")
	}

	if len(series.Points) > 1 {
		values := make([]float64, len(series.Points))
		for i, p := range series.Points {
			values[i] = p.CumulativeSpend
		}
		b.WriteString("\n")
		b.WriteString(components.Sparkline(values, t.Accent))
		b.WriteString("\n")
	}

	if len(series.Milestones) > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Milestones"))
		b.WriteString("\n")
		for _, m := range series.Milestones {
			b.WriteString(valueStyle.Render(fmt.Sprintf("  %s  %s",
				cli.FormatDate(m.Date), truncStr(m.Name, w-16))))
			b.WriteString("\n")
		}
	}

	name := series.ProjectName
	if name == "" {
		name = series.ProjectID
	}
	return components.ContentCard(name, b.String(), w)
}
