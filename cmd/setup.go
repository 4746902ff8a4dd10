package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"pburn/internal/config"
	"pburn/internal/source"

	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)

	// Load existing config or defaults
	cfg, _ := config.Load()

	fmt.Println()
	fmt.Println("  Welcome to pburn!")
	fmt.Println()

	// 1. Data directory
	fmt.Println("  1. Project data directory")
	fmt.Println("     Where your project spend CSV files live.")
	current := config.DataDir(cfg, flagDataDir)
	fmt.Printf("     Current: %s\n", current)
	fmt.Print("     > ")
	dirInput, _ := reader.ReadString('\n')
	dirInput = strings.TrimSpace(dirInput)
	if dirInput != "" {
		cfg.General.DataDir = dirInput
	}

	files, _ := source.ScanDir(config.DataDir(cfg, flagDataDir))
	if len(files) > 0 {
		fmt.Printf("     Found %d CSV files.\n", len(files))
	} else {
		fmt.Println("     No CSV files found there yet.")
	}
	fmt.Println()

	// 2. Variance threshold
	fmt.Println("  2. Variance threshold")
	fmt.Println("     Flag a project when spend deviates from budget by more than this fraction.")
	fmt.Printf("     Current: %.2f\n", cfg.Thresholds.VariancePct)
	fmt.Print("     > ")
	varInput, _ := reader.ReadString('\n')
	varInput = strings.TrimSpace(varInput)
	if varInput != "" {
		if v, err := strconv.ParseFloat(varInput, 64); err == nil && v > 0 {
			cfg.Thresholds.VariancePct = v
		} else {
			fmt.Println("     Not a valid fraction, keeping current value.")
		}
	}
	fmt.Println()

	// 3. Risk score threshold
	fmt.Println("  3. Risk score threshold")
	fmt.Printf("     Current: %.1f\n", cfg.Thresholds.RiskScore)
	fmt.Print("     > ")
	scoreInput, _ := reader.ReadString('\n')
	scoreInput = strings.TrimSpace(scoreInput)
	if scoreInput != "" {
		if v, err := strconv.ParseFloat(scoreInput, 64); err == nil {
			cfg.Thresholds.RiskScore = v
		} else {
			fmt.Println("     Not a number, keeping current value.")
		}
	}
	fmt.Println()

	// 4. Theme
	fmt.Println("  4. Color theme")
	fmt.Println("     (1) Flexoki Dark [default]")
	fmt.Println("     (2) Terminal (ANSI 16)")
	fmt.Print("     > ")
	themeChoice, _ := reader.ReadString('\n')
	themeChoice = strings.TrimSpace(themeChoice)
	switch themeChoice {
	case "2":
		cfg.Appearance.Theme = "terminal"
	default:
		cfg.Appearance.Theme = "flexoki-dark"
	}

	// Save
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `pburn setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}
