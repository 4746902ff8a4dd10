package cmd

import (
	"fmt"
	"time"

	"pburn/internal/cli"
	"pburn/internal/kpi"
	"pburn/internal/model"
	"pburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project <id-or-name>",
	Short: "Detailed KPI card for one project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProject,
}

func init() {
	rootCmd.AddCommand(projectCmd)
}

// projectPayload is the machine-readable project detail.
type projectPayload struct {
	ProjectID    string    `json:"project_id" yaml:"project_id"`
	ProjectName  string    `json:"project_name" yaml:"project_name"`
	Budget       float64   `json:"budget" yaml:"budget"`
	LatestSpend  float64   `json:"latest_spend" yaml:"latest_spend"`
	LatestDate   time.Time `json:"latest_date" yaml:"latest_date"`
	PctExecution float64   `json:"pct_execution" yaml:"pct_execution"`
	VariancePct  float64   `json:"variance_pct" yaml:"variance_pct"`
	BurnRate     float64   `json:"burn_rate" yaml:"burn_rate"`
	DaysElapsed  int       `json:"days_elapsed" yaml:"days_elapsed"`
	DaysTotal    int       `json:"days_total" yaml:"days_total"`
	Forecast     float64   `json:"forecast_to_complete" yaml:"forecast_to_complete"`
	RiskScore    float64   `json:"risk_score" yaml:"risk_score"`
	IsRisky      bool      `json:"is_risky" yaml:"is_risky"`
	Reasons      []string  `json:"reasons" yaml:"reasons"`

	Milestones []milestonePayload `json:"milestones,omitempty" yaml:"milestones,omitempty"`
}

type milestonePayload struct {
	Name string    `json:"name" yaml:"name"`
	Date time.Time `json:"date" yaml:"date"`
}

func runProject(_ *cobra.Command, args []string) error {
	query := args[0]

	result, err := loadData()
	if err != nil {
		return err
	}

	cli.CurrencySymbol = activeConfig().Currency.Symbol

	series := applyFilters(result.Series)
	target, ok := pipeline.FindProject(series, query)
	if !ok {
		// Fall back to substring matching before giving up.
		matches := pipeline.FilterByProject(series, query)
		if len(matches) == 0 {
			return fmt.Errorf("no project matches %q", query)
		}
		if len(matches) > 1 {
			fmt.Printf("\n  %q matches %d projects:\n", query, len(matches))
			for _, s := range matches {
				fmt.Printf("    %s  %s\n", s.ProjectID, s.ProjectName)
			}
			return nil
		}
		target = matches[0]
	}

	record, err := kpi.Compute(target)
	if err != nil {
		return err
	}

	variancePct, riskScore := thresholds()
	assessment := kpi.FlagRisk(record, variancePct, riskScore)

	switch flagOutput {
	case "json":
		return writeJSON(buildProjectPayload(target, record, assessment))
	case "yaml":
		return writeYAML(buildProjectPayload(target, record, assessment))
	case "table":
		renderProjectCard(target, record, assessment)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json, or yaml)", flagOutput)
	}
}

func buildProjectPayload(series model.ProjectSeries, record model.KPIRecord, assessment model.RiskAssessment) projectPayload {
	payload := projectPayload{
		ProjectID:    series.ProjectID,
		ProjectName:  series.ProjectName,
		Budget:       record.Budget,
		LatestSpend:  record.LatestSpend,
		LatestDate:   record.LatestDate,
		PctExecution: record.PctExecution,
		VariancePct:  record.VariancePct,
		BurnRate:     record.BurnRate,
		DaysElapsed:  record.DaysElapsed,
		DaysTotal:    record.DaysTotal,
		Forecast:     record.ForecastToComplete,
		RiskScore:    record.RiskScore,
		IsRisky:      assessment.IsRisky,
		Reasons:      assessment.Reasons,
	}
	for _, m := range series.Milestones {
		payload.Milestones = append(payload.Milestones, milestonePayload{Name: m.Name, Date: m.Date})
	}
	return payload
}

func renderProjectCard(series model.ProjectSeries, record model.KPIRecord, assessment model.RiskAssessment) {
	name := series.ProjectName
	if name == "" {
		name = series.ProjectID
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PROJECT  %s", name)))
	fmt.Println()

	rows := [][]string{
		{"Budget", cli.FormatMoney(record.Budget)},
		{"Spend to date", fmt.Sprintf("%s  (as of %s)", cli.FormatMoney(record.LatestSpend), cli.FormatDate(record.LatestDate))},
		{"Execution", cli.FormatPercent(record.PctExecution)},
		{"Variance", cli.FormatPercent(record.VariancePct)},
		{"---"},
		{"Burn rate", fmt.Sprintf("%s/day", cli.FormatMoney(record.BurnRate))},
		{"Elapsed", fmt.Sprintf("%s of %s", cli.FormatDays(record.DaysElapsed), cli.FormatDays(record.DaysTotal))},
		{"Forecast", cli.FormatMoney(record.ForecastToComplete)},
		{"---"},
		{"Risk score", cli.FormatScore(record.RiskScore)},
		{"Status", cli.RiskFlag(assessment.IsRisky)},
	}

	table := cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}
	fmt.Print(cli.RenderTable(table))

	// Spend trajectory sparkline
	if len(series.Points) > 1 {
		values := make([]float64, len(series.Points))
		for i, p := range series.Points {
			values[i] = p.CumulativeSpend
		}
		fmt.Printf("\n  Spend  %s\n", cli.RenderSparkline(values))
	}

	if len(assessment.Reasons) > 0 {
		fmt.Println()
		for _, reason := range assessment.Reasons {
			fmt.Printf("  • %s\n", reason)
		}
	}

	if len(series.Milestones) > 0 {
		fmt.Println("\n  Milestones")
		for _, m := range series.Milestones {
			fmt.Printf("    %s  %s\n", cli.FormatDate(m.Date), m.Name)
		}
	}
}
