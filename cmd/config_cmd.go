// Package cmd implements the pburn CLI commands.
package cmd

import (
	"fmt"

	"pburn/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	if cfg.General.DataDir != "" {
		fmt.Printf("    Data directory: %s\n", cfg.General.DataDir)
	} else {
		fmt.Println("    Data directory: not set (./data)")
	}
	if cfg.General.DefaultDays > 0 {
		fmt.Printf("    Default days:   %d\n", cfg.General.DefaultDays)
	} else {
		fmt.Println("    Default days:   all data")
	}
	fmt.Println()

	fmt.Println("  [Thresholds]")
	fmt.Printf("    Variance: %.0f%%\n", cfg.Thresholds.VariancePct*100)
	fmt.Printf("    Risk score: %.1f\n", cfg.Thresholds.RiskScore)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Currency]")
	fmt.Printf("    Symbol: %s\n", cfg.Currency.Symbol)
	fmt.Println()

	fmt.Println("  Run `pburn setup` to reconfigure.")
	return nil
}
