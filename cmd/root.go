package cmd

import (
	"fmt"
	"os"
	"time"

	"pburn/internal/cli"
	"pburn/internal/config"
	"pburn/internal/model"
	"pburn/internal/pipeline"
	"pburn/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagDays              int
	flagProject           string
	flagNoCache           bool
	flagDataDir           string
	flagQuiet             bool
	flagOutput            string
	flagVarianceThreshold float64
	flagRiskThreshold     float64
)

var rootCmd = &cobra.Command{
	Use:   "pburn",
	Short: "Project Budget Burn CLI",
	Long:  "Track project spend against budget: execution, variance, burn rate, forecast, and risk.",
	RunE:  runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagDays, "days", "n", 0, "Limit analysis to the last N days of spend entries (0 = all)")
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "p", "", "Filter to project (id or name, substring match)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Project CSV data directory")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "table", "Output format: table, json, or yaml")
	rootCmd.PersistentFlags().Float64Var(&flagVarianceThreshold, "variance-threshold", 0, "Variance fraction that flags risk (default from config)")
	rootCmd.PersistentFlags().Float64Var(&flagRiskThreshold, "risk-threshold", 0, "Risk score that flags risk (default from config)")
}

// loadedConfig is resolved once per invocation and shared by all commands.
var loadedConfig *config.Config

func activeConfig() config.Config {
	if loadedConfig == nil {
		cfg, err := config.Load()
		if err != nil {
			cfg = config.DefaultConfig()
		}
		loadedConfig = &cfg
	}
	return *loadedConfig
}

// dataDir resolves the data directory: flag beats config beats ./data.
func dataDir() string {
	return config.DataDir(activeConfig(), flagDataDir)
}

// thresholds resolves risk thresholds: flags beat config beats defaults.
func thresholds() (variancePct, riskScore float64) {
	cfg := activeConfig()
	variancePct = cfg.Thresholds.VariancePct
	riskScore = cfg.Thresholds.RiskScore
	if flagVarianceThreshold != 0 {
		variancePct = flagVarianceThreshold
	}
	if flagRiskThreshold != 0 {
		riskScore = flagRiskThreshold
	}
	return variancePct, riskScore
}

// loadData is the shared data loading path used by all commands.
// Uses SQLite cache when available for fast subsequent runs.
func loadData() (*pipeline.LoadResult, error) {
	dir := dataDir()

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning project files...\n")
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%50 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing %s [%d/%d]",
				cli.RenderProgressBar(current, total, 20), current, total)
		}
	}

	// Try cached load unless --no-cache
	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			// Cache open failed, fall back to uncached
			if !flagQuiet {
				fmt.Fprintf(os.Stderr, "  Cache unavailable, doing full parse\n")
			}
		} else {
			defer func() { _ = cache.Close() }()

			cr, err := pipeline.LoadWithCache(dir, cache, progressFn)
			if err != nil {
				if !flagQuiet {
					fmt.Fprintf(os.Stderr, "\n  Cache error, falling back to full parse\n")
				}
			} else {
				if !flagQuiet && cr.TotalFiles > 0 {
					if cr.Reparsed == 0 {
						fmt.Fprintf(os.Stderr, "\r  Loaded %d projects from cache    \n", cr.ProjectCount)
					} else {
						fmt.Fprintf(os.Stderr, "\r  %d files cached + %d reparsed (%d projects)    \n",
							cr.CacheHits, cr.Reparsed, cr.ProjectCount)
					}
				}
				return &cr.LoadResult, nil
			}
		}
	}

	// Uncached path
	result, err := pipeline.Load(dir, progressFn)
	if err != nil {
		return nil, err
	}

	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %d files across %d projects    \n",
			result.ParsedFiles, result.ProjectCount)
	}

	return result, nil
}

// applyFilters narrows series to the project and time window flags.
// The day window comes from --days, falling back to the config default.
func applyFilters(series []model.ProjectSeries) []model.ProjectSeries {
	filtered := series
	if flagProject != "" {
		filtered = pipeline.FilterByProject(filtered, flagProject)
	}

	days := flagDays
	if days == 0 {
		days = activeConfig().General.DefaultDays
	}
	if days > 0 {
		until := time.Now().AddDate(0, 0, 1)
		since := time.Now().AddDate(0, 0, -days)
		filtered = pipeline.FilterByDate(filtered, since, until)
	}
	return filtered
}

// buildSnapshot loads, filters, and computes the portfolio snapshot.
func buildSnapshot() (*pipeline.LoadResult, pipeline.PortfolioSnapshot, error) {
	result, err := loadData()
	if err != nil {
		return nil, pipeline.PortfolioSnapshot{}, err
	}

	cli.CurrencySymbol = activeConfig().Currency.Symbol

	filtered := applyFilters(result.Series)
	variancePct, riskScore := thresholds()

	snap, err := pipeline.Snapshot(filtered, variancePct, riskScore)
	if err != nil {
		return nil, pipeline.PortfolioSnapshot{}, err
	}
	return result, snap, nil
}
