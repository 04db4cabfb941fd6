package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"openaq-archiver/internal/database"
	"openaq-archiver/internal/globals"
)

var runsLimit int

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:     "runs",
	Aliases: []string{"r"},
	Short:   "Inspect archived fetch runs",
	Long:    `Commands for inspecting the local archive of past fetch runs.`,
}

// runsListCmd represents the runs list command
var runsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List archived fetch runs",
	Long:    `List archived fetch runs with their run ID, station, lookback window, record counts and output path.`,
	RunE:    runRunsList,
}

func runRunsList(cmd *cobra.Command, args []string) error {
	globals.Logger.Debug("Fetching runs from archive")

	if err := database.Init(); err != nil {
		return err
	}

	runs, err := database.RecentRuns(database.DB, runsLimit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No fetch runs archived yet.")
		return nil
	}

	// Create tabwriter for aligned output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "RUN ID\tSTATION\tDAYS\tRECORDS\tFAILED SENSORS\tOUTPUT\tFINISHED")
	fmt.Fprintln(w, "------\t-------\t----\t-------\t--------------\t------\t--------")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			run.RunID,
			run.Station,
			run.DaysBack,
			run.RecordCount,
			run.FailedSensors,
			run.OutputPath,
			run.FinishedAt.Format("2006-01-02T15:04:05Z07:00"),
		)
	}

	globals.Logger.Debug("Run list completed", "count", len(runs))

	return nil
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)

	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "Maximum number of runs to list")
}
