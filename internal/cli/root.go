package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"openaq-archiver/internal/globals"
	"openaq-archiver/internal/version"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "openaq-archiver",
	Short: "OpenAQ sensor history archiver",
	Long: `Fetches air-quality sensor readings from the OpenAQ v3 API, stores them
as compressed parquet record sets, and runs data-quality checks over stored
record sets.

Sensors are configured in a YAML station registry mapping parameter labels
(pm25, temp, humidity, ...) to OpenAQ sensor IDs. Every fetch run is archived
in a local sqlite database for later inspection with "runs list".`,
	Version:      version.GetVersion(),
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// A .env file is optional; the process environment is authoritative.
		_ = godotenv.Load()
		globals.Initialize(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging")
}
