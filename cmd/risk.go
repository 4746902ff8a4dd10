package cmd

import (
	"fmt"
	"os"

	"pburn/internal/cli"
	"pburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagRiskExitCode bool

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "List projects flagged at risk",
	Long:  "List projects whose variance, risk score, or forecast crosses the configured thresholds.",
	RunE:  runRisk,
}

func init() {
	riskCmd.Flags().BoolVar(&flagRiskExitCode, "exit-code", false, "Exit 1 when any project is flagged (for CI and scripts)")
	rootCmd.AddCommand(riskCmd)
}

func runRisk(_ *cobra.Command, _ []string) error {
	_, snap, err := buildSnapshot()
	if err != nil {
		return err
	}

	risky := riskyOnly(snap)

	switch flagOutput {
	case "json":
		if err := writeJSON(buildSummaryPayload(risky)); err != nil {
			return err
		}
	case "yaml":
		if err := writeYAML(buildSummaryPayload(risky)); err != nil {
			return err
		}
	case "table":
		renderRiskList(snap, risky)
	default:
		return fmt.Errorf("unknown output format %q (want table, json, or yaml)", flagOutput)
	}

	if flagRiskExitCode && risky.RiskyCount > 0 {
		os.Exit(1)
	}
	return nil
}

// riskyOnly narrows a snapshot to its flagged rows. Totals are recomputed
// over the flagged subset.
func riskyOnly(snap pipeline.PortfolioSnapshot) pipeline.PortfolioSnapshot {
	out := pipeline.PortfolioSnapshot{}
	for i, row := range snap.Rows {
		if !snap.Assessments[i].IsRisky {
			continue
		}
		out.Rows = append(out.Rows, row)
		out.Assessments = append(out.Assessments, snap.Assessments[i])
		out.RiskyCount++
		out.TotalBudget += row.Budget
		out.TotalSpend += row.LatestSpend
		out.TotalForecast += row.ForecastToComplete
	}
	return out
}

func renderRiskList(full, risky pipeline.PortfolioSnapshot) {
	fmt.Println()
	fmt.Println(cli.RenderTitle("AT-RISK PROJECTS"))
	fmt.Println()

	if len(risky.Rows) == 0 {
		fmt.Printf("  No projects flagged (%d analyzed).\n", len(full.Rows))
		return
	}

	maxScore := 0.0
	for _, row := range risky.Rows {
		mag := row.RiskScore
		if mag < 0 {
			mag = -mag
		}
		if mag > maxScore {
			maxScore = mag
		}
	}

	for i, row := range risky.Rows {
		name := row.ProjectName
		if name == "" {
			name = row.ProjectID
		}

		mag := row.RiskScore
		if mag < 0 {
			mag = -mag
		}
		fmt.Printf("  %-24s %-12s %s\n",
			name,
			cli.FormatScore(row.RiskScore),
			cli.RenderHorizontalBar(mag, maxScore, 24),
		)
		fmt.Printf("      variance %s  spend %s of %s  forecast %s\n",
			cli.FormatPercent(row.VariancePct),
			cli.FormatMoney(row.LatestSpend),
			cli.FormatMoney(row.Budget),
			cli.FormatMoney(row.ForecastToComplete),
		)
		for _, reason := range risky.Assessments[i].Reasons {
			fmt.Printf("      %s\n", reason)
		}
		fmt.Println()
	}

	fmt.Printf("  %d of %d projects flagged at risk\n", len(risky.Rows), len(full.Rows))
}
