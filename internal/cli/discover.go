package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"openaq-archiver/internal/config"
	"openaq-archiver/internal/globals"
	"openaq-archiver/openaq/api"
)

var (
	discoverName string
	discoverID   int64
)

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover OpenAQ sensors for a location",
	Long: `Look up the sensors of an OpenAQ location, either by searching for the
location name or by giving its ID directly. Use the printed sensor IDs to
fill in the station registry.

Examples:
  openaq-archiver discover --name "Katowice-Kossutha"
  openaq-archiver discover --id 10510`,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if discoverName == "" && discoverID == 0 {
		return errors.New("either --name or --id is required")
	}

	apiKey, err := config.APIKeyFromEnv()
	if err != nil {
		return err
	}

	client, err := api.NewClient(apiKey, api.WithLogger(globals.Logger))
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	locationID := discoverID
	locationName := "direct ID lookup"

	if locationID == 0 {
		locations, err := client.SearchLocations(ctx, discoverName)
		if err != nil {
			return err
		}
		if len(locations) == 0 {
			return fmt.Errorf("no locations found matching %q", discoverName)
		}

		// Use the first match but warn if multiple found
		if len(locations) > 1 {
			globals.Logger.Warn("Multiple locations matched, using first result",
				"matches", len(locations), "name", locations[0].Name)
		}

		locationID = locations[0].ID
		locationName = locations[0].Name
	}

	sensors, err := client.FetchLocationSensors(ctx, locationID)
	if err != nil {
		return err
	}

	if len(sensors) == 0 {
		fmt.Printf("No active sensors found for location %d (%s).\n", locationID, locationName)
		return nil
	}

	fmt.Printf("Location: %s (ID: %d)\n\n", locationName, locationID)

	// Create tabwriter for aligned output
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "ID\tPARAMETER\tUNITS\tLAST VALUE")
	fmt.Fprintln(w, "--\t---------\t-----\t----------")

	for _, sensor := range sensors {
		name := sensor.Parameter.DisplayName
		if name == "" {
			name = sensor.Parameter.Name
		}

		fmt.Fprintf(w, "%d\t%s\t%s\t%g\n",
			sensor.ID,
			name,
			sensor.Parameter.Units,
			sensor.Latest.Value,
		)
	}

	return nil
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().StringVar(&discoverName, "name", "", "Search by location name")
	discoverCmd.Flags().Int64Var(&discoverID, "id", 0, "Location ID to list sensors for")
	discoverCmd.MarkFlagsMutuallyExclusive("name", "id")
}
