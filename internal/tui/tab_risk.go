package tui

import (
	"fmt"
	"strings"

	"pburn/internal/cli"
	"pburn/internal/tui/components"
	"pburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// renderRiskTab lists flagged projects with their classifier reasons.
func (a App) renderRiskTab(cw int) string {
	t := theme.Active

	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if len(a.snap.Rows) == 0 {
		return "\n" + mutedStyle.Render("  No projects to show.")
	}

	if a.snap.RiskyCount == 0 {
		okStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
		return "\n" + okStyle.Render(fmt.Sprintf("  All clear. %d projects within thresholds.", len(a.snap.Rows)))
	}

	headStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	scoreStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface).Bold(true)
	reasonStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	for i, row := range a.snap.Rows {
		if !a.snap.Assessments[i].IsRisky {
			continue
		}

		name := row.ProjectName
		if name == "" {
			name = row.ProjectID
		}

		var card strings.Builder
		card.WriteString(headStyle.Render(name))
		card.WriteString(scoreStyle.Render(fmt.Sprintf("  score %s", cli.FormatScore(row.RiskScore))))
		card.WriteString("\n")
		card.WriteString(reasonStyle.Render(fmt.Sprintf("variance %s · spend %s of %s · forecast %s",
			cli.FormatPercent(row.VariancePct),
			cli.FormatMoney(row.LatestSpend),
			cli.FormatMoney(row.Budget),
			cli.FormatMoney(row.ForecastToComplete))))
		card.WriteString("\n")
		for _, reason := range a.snap.Assessments[i].Reasons {
			card.WriteString(reasonStyle.Render("· " + reason))
			card.WriteString("\n")
		}

		b.WriteString(components.ContentCard("", strings.TrimRight(card.String(), "\n"), cw))
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d of %d projects flagged", a.snap.RiskyCount, len(a.snap.Rows))))
	return b.String()
}
