package tui

import (
	"fmt"
	"strings"

	"pburn/internal/cli"
	"pburn/internal/tui/components"
	"pburn/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active

	if a.computeErr != nil {
		errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
		return "\n" + errStyle.Render(fmt.Sprintf("  Could not compute KPIs: %v", a.computeErr))
	}

	if len(a.snap.Rows) == 0 {
		mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		return "\n" + mutedStyle.Render("  No project data found. Drop CSV files into "+a.dataDir+" and press r.")
	}

	var b strings.Builder

	// Top metric cards
	riskDetail := ""
	if a.snap.RiskyCount > 0 {
		riskDetail = "needs attention"
	}
	cards := []struct{ Label, Value, Detail string }{
		{"Projects", fmt.Sprintf("%d", len(a.snap.Rows)), ""},
		{"At Risk", fmt.Sprintf("%d", a.snap.RiskyCount), riskDetail},
		{"Budget", cli.FormatMoney(a.snap.TotalBudget), ""},
		{"Spend", cli.FormatMoney(a.snap.TotalSpend), ""},
		{"Forecast", cli.FormatMoney(a.snap.TotalForecast), forecastDetail(a.snap.TotalForecast, a.snap.TotalBudget)},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Portfolio budget utilization
	if a.snap.TotalBudget > 0 {
		inner := components.CardInnerWidth(cw)
		barW := inner - 22
		if barW < 10 {
			barW = 10
		}
		util := a.snap.TotalSpend / a.snap.TotalBudget
		body := components.BudgetBar("Spend", util, 10, barW)
		if a.snap.TotalForecast > 0 {
			forecastUtil := a.snap.TotalForecast / a.snap.TotalBudget
			body += "\n" + components.BudgetBar("Forecast", forecastUtil, 10, barW)
		}
		b.WriteString(components.ContentCard("Budget Utilization", body, cw))
		b.WriteString("\n")
	}

	// Top projects by risk score
	topN := len(a.snap.Rows)
	if topN > 6 {
		topN = 6
	}
	inner := components.CardInnerWidth(cw)
	labelW := 18
	barW := inner - labelW - 14
	if barW < 8 {
		barW = 8
	}

	bars := make([]components.BarRow, 0, topN)
	for i := 0; i < topN; i++ {
		row := a.snap.Rows[i]
		name := row.ProjectName
		if name == "" {
			name = row.ProjectID
		}

		color := t.Green
		if a.snap.Assessments[i].IsRisky {
			color = t.Red
		} else if row.RiskScore > 0 {
			color = t.Orange
		}

		// Bars scale on magnitude so under-budget projects still show up.
		mag := row.RiskScore
		if mag < 0 {
			mag = -mag
		}

		bars = append(bars, components.BarRow{
			Label: name,
			Value: mag,
			Text:  cli.FormatScore(row.RiskScore),
			Color: color,
		})
	}
	b.WriteString(components.ContentCard("Risk Ranking", components.HorizontalBars(bars, labelW, barW), cw))

	// Spend trajectory for the riskiest project
	top := a.snap.Rows[0]
	if series, ok := a.seriesByID[top.ProjectID]; ok && len(series.Points) > 1 {
		values := make([]float64, len(series.Points))
		for i, p := range series.Points {
			values[i] = p.CumulativeSpend
		}
		name := top.ProjectName
		if name == "" {
			name = top.ProjectID
		}
		spark := components.Sparkline(values, t.Accent)
		mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
		body := spark + "\n" + mutedStyle.Render(fmt.Sprintf("%s → %s of %s",
			cli.FormatDate(series.Points[0].Date),
			cli.FormatMoney(top.LatestSpend),
			cli.FormatMoney(top.Budget)))
		b.WriteString("\n")
		b.WriteString(components.ContentCard(fmt.Sprintf("Spend · %s", name), body, cw))
	}

	return b.String()
}

func forecastDetail(forecast, budget float64) string {
	if budget <= 0 {
		return ""
	}
	if forecast > budget {
		return "over budget"
	}
	return "within budget"
}
