package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/spf13/cobra"

	"openaq-archiver/internal/config"
	"openaq-archiver/internal/globals"
	"openaq-archiver/internal/quality"
	"openaq-archiver/internal/recordset"
)

var (
	checkInput         string
	checkCleanedOutput string
	checkRegistry      string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run quality checks over a stored record set",
	Long: `Validate a stored record set: structural findings (row count, null rows,
time range) are reported as information, physical-plausibility violations
(negative concentrations, implausible temperatures) fail the check with exit
code 1. On a pass, an optional cleaned copy with null and out-of-bounds rows
removed can be written.

Examples:
  openaq-archiver check --input data/raw/katowice-zawodzie_history.parquet
  openaq-archiver check --input data/raw/history.parquet --cleaned-output data/clean/history.parquet`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := globals.Logger

	rows, err := recordset.ReadFile(checkInput)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("input file %s not found", checkInput)
		}
		return err
	}

	bounds := quality.DefaultBounds()
	var labels []string

	if checkRegistry != "" {
		registry, err := config.LoadRegistry(checkRegistry)
		if err != nil {
			return err
		}
		bounds = registry.PlausibilityBounds()
		labels = registry.KnownLabels()
	}

	checker := quality.NewChecker(bounds, labels)
	report := checker.Check(rows)

	logger.Info("Structural check", "rows", report.RowCount, "columns", report.Columns)

	if report.NullRows == 0 {
		logger.Info("No missing values found")
	} else {
		logger.Warn("Missing values found", "null_rows", report.NullRows)
	}

	if !report.EarliestTimestamp.IsZero() {
		logger.Info("Time range", "from", report.EarliestTimestamp, "to", report.LatestTimestamp)
	}
	if report.UnparsableTimestamps > 0 {
		logger.Warn("Unparsable timestamps", "count", report.UnparsableTimestamps)
	}

	for _, parameter := range sortedKeys(report.CountsByParameter) {
		logger.Info("Counts by parameter", "parameter", parameter, "count", report.CountsByParameter[parameter])
	}

	for _, violation := range report.Violations {
		logger.Error("Plausibility violation",
			"row", violation.RowIndex,
			"parameter", violation.Parameter,
			"value", violation.Value,
			"bound", violation.Bound,
			"reason", violation.Reason,
		)
	}

	for _, parameter := range sortedKeys(report.UnknownParameters) {
		logger.Error("Parameter not in station registry",
			"parameter", parameter, "rows", report.UnknownParameters[parameter])
	}

	if !report.OK() {
		return fmt.Errorf("quality check failed: %d violations, %d unknown parameters",
			len(report.Violations), len(report.UnknownParameters))
	}

	logger.Info("Quality check passed")

	if checkCleanedOutput != "" {
		cleaned := checker.Clean(rows)
		if err := recordset.WriteFile(checkCleanedOutput, cleaned); err != nil {
			return err
		}

		logger.Info("Cleaned record set written",
			"path", checkCleanedOutput,
			"records", len(cleaned),
			"dropped", report.RowCount-len(cleaned),
		)
	}

	return nil
}

func sortedKeys(counts map[string]int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkInput, "input", "i", "", "Input parquet path")
	checkCmd.Flags().StringVar(&checkCleanedOutput, "cleaned-output", "", "Write a cleaned copy here on pass")
	checkCmd.Flags().StringVar(&checkRegistry, "registry", "", "Station registry path for bounds and label checks")
	checkCmd.MarkFlagRequired("input")
}
