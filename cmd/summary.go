package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"pburn/internal/cli"
	"pburn/internal/pipeline"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Portfolio summary ranked by risk score",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

// summaryRow is the machine-readable shape of one portfolio line.
type summaryRow struct {
	ProjectID    string   `json:"project_id" yaml:"project_id"`
	ProjectName  string   `json:"project_name" yaml:"project_name"`
	Budget       float64  `json:"budget" yaml:"budget"`
	LatestSpend  float64  `json:"latest_spend" yaml:"latest_spend"`
	PctExecution float64  `json:"pct_execution" yaml:"pct_execution"`
	VariancePct  float64  `json:"variance_pct" yaml:"variance_pct"`
	Forecast     float64  `json:"forecast_to_complete" yaml:"forecast_to_complete"`
	RiskScore    float64  `json:"risk_score" yaml:"risk_score"`
	IsRisky      bool     `json:"is_risky" yaml:"is_risky"`
	Reasons      []string `json:"reasons" yaml:"reasons"`
}

type summaryPayload struct {
	GeneratedAt       time.Time    `json:"generated_at" yaml:"generated_at"`
	VarianceThreshold float64      `json:"variance_threshold" yaml:"variance_threshold"`
	RiskThreshold     float64      `json:"risk_threshold" yaml:"risk_threshold"`
	Projects          int          `json:"projects" yaml:"projects"`
	RiskyProjects     int          `json:"risky_projects" yaml:"risky_projects"`
	TotalBudget       float64      `json:"total_budget" yaml:"total_budget"`
	TotalSpend        float64      `json:"total_spend" yaml:"total_spend"`
	TotalForecast     float64      `json:"total_forecast" yaml:"total_forecast"`
	Rows              []summaryRow `json:"rows" yaml:"rows"`
}

func runSummary(_ *cobra.Command, _ []string) error {
	result, snap, err := buildSnapshot()
	if err != nil {
		return err
	}

	if len(snap.Rows) == 0 {
		fmt.Println("\n  No project data found.")
		fmt.Printf("  Drop CSV files into %s and try again.\n", dataDir())
		return nil
	}

	switch flagOutput {
	case "json":
		return writeJSON(buildSummaryPayload(snap))
	case "yaml":
		return writeYAML(buildSummaryPayload(snap))
	case "table":
		renderSummaryTable(snap)
	default:
		return fmt.Errorf("unknown output format %q (want table, json, or yaml)", flagOutput)
	}

	// Print warnings
	if result.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d files could not be parsed\n", result.FileErrors)
	}
	if result.RowErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d rows skipped (bad or missing dates)\n", result.RowErrors)
	}

	return nil
}

func buildSummaryPayload(snap pipeline.PortfolioSnapshot) summaryPayload {
	variancePct, riskScore := thresholds()
	payload := summaryPayload{
		GeneratedAt:       time.Now(),
		VarianceThreshold: variancePct,
		RiskThreshold:     riskScore,
		Projects:          len(snap.Rows),
		RiskyProjects:     snap.RiskyCount,
		TotalBudget:       snap.TotalBudget,
		TotalSpend:        snap.TotalSpend,
		TotalForecast:     snap.TotalForecast,
		Rows:              make([]summaryRow, len(snap.Rows)),
	}

	for i, row := range snap.Rows {
		a := snap.Assessments[i]
		payload.Rows[i] = summaryRow{
			ProjectID:    row.ProjectID,
			ProjectName:  row.ProjectName,
			Budget:       row.Budget,
			LatestSpend:  row.LatestSpend,
			PctExecution: row.PctExecution,
			VariancePct:  row.VariancePct,
			Forecast:     row.ForecastToComplete,
			RiskScore:    row.RiskScore,
			IsRisky:      a.IsRisky,
			Reasons:      a.Reasons,
		}
	}

	return payload
}

func renderSummaryTable(snap pipeline.PortfolioSnapshot) {
	fmt.Println()
	fmt.Println(cli.RenderTitle("PROJECT PORTFOLIO  by risk score"))
	fmt.Println()

	rows := make([][]string, 0, len(snap.Rows)+2)
	for i, row := range snap.Rows {
		name := row.ProjectName
		if name == "" {
			name = row.ProjectID
		}
		rows = append(rows, []string{
			name,
			cli.FormatMoney(row.Budget),
			cli.FormatMoney(row.LatestSpend),
			cli.FormatPercent(row.PctExecution),
			cli.FormatPercent(row.VariancePct),
			cli.FormatMoney(row.ForecastToComplete),
			cli.FormatScore(row.RiskScore),
			cli.RiskFlag(snap.Assessments[i].IsRisky),
		})
	}

	rows = append(rows, []string{"---"})
	rows = append(rows, []string{
		"Total",
		cli.FormatMoney(snap.TotalBudget),
		cli.FormatMoney(snap.TotalSpend),
		"",
		"",
		cli.FormatMoney(snap.TotalForecast),
		"",
		"",
	})

	table := cli.Table{
		Headers: []string{"Project", "Budget", "Spend", "Exec", "Variance", "Forecast", "Score", "Flag"},
		Rows:    rows,
	}
	fmt.Print(cli.RenderTable(table))

	fmt.Printf("\n  %d of %d projects flagged at risk\n", snap.RiskyCount, len(snap.Rows))
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(v any) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(v)
}
