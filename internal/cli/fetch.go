package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"openaq-archiver/internal/config"
	"openaq-archiver/internal/database"
	"openaq-archiver/internal/globals"
	"openaq-archiver/internal/models"
	"openaq-archiver/internal/recordset"
	"openaq-archiver/openaq/api"
)

var (
	fetchDaysBack int
	fetchOutput   string
	fetchStation  string
	fetchRegistry string
	fetchTimeout  int
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch recent sensor history and write a record set",
	Long: `Fetch recent history for every sensor of a station and write one parquet
record set. One sensor's failure does not abort the batch; whatever partial
results succeeded are kept. The run is archived in the local run database.

Examples:
  openaq-archiver fetch --station katowice-zawodzie --days-back 7
  openaq-archiver fetch --station katowice-zawodzie --output data/raw/history.parquet`,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	apiKey, err := config.APIKeyFromEnv()
	if err != nil {
		return err
	}

	registryPath := fetchRegistry
	if registryPath == "" {
		registryPath = config.DefaultRegistryPath()
	}

	registry, err := config.LoadRegistry(registryPath)
	if err != nil {
		return err
	}

	stationName, station, err := selectStation(registry, fetchStation)
	if err != nil {
		return err
	}

	client, err := api.NewClient(apiKey,
		api.WithTimeout(time.Duration(fetchTimeout)*time.Second),
		api.WithLogger(globals.Logger),
	)
	if err != nil {
		return err
	}

	startedAt := time.Now()
	ctx := cmd.Context()

	var collected []models.Measurement
	failedSensors := 0

	for _, label := range station.SortedLabels() {
		sensorID := station.Sensors[label]

		measurements, err := client.FetchSensorHistory(ctx, sensorID, label, fetchDaysBack)
		if err != nil {
			globals.Logger.Error("Failed to fetch sensor history",
				"station", stationName, "parameter", label, "sensor_id", sensorID, "error", err)
			failedSensors++
			continue
		}

		collected = append(collected, measurements...)
	}

	if len(collected) == 0 {
		return fmt.Errorf("no data collected for station %s", stationName)
	}

	outputPath := fetchOutput
	if outputPath == "" {
		outputPath = filepath.Join("data", "raw", fmt.Sprintf("%s_history.parquet", stationName))
	}

	if err := recordset.WriteFile(outputPath, collected); err != nil {
		return err
	}

	globals.Logger.Info("Record set written",
		"station", stationName,
		"path", outputPath,
		"records", len(collected),
		"failed_sensors", failedSensors,
	)

	archiveRun(&models.FetchRun{
		RunID:         uuid.NewString(),
		Station:       stationName,
		DaysBack:      fetchDaysBack,
		SensorCount:   len(station.Sensors),
		FailedSensors: failedSensors,
		RecordCount:   len(collected),
		OutputPath:    outputPath,
		StartedAt:     startedAt,
		FinishedAt:    time.Now(),
	})

	return nil
}

// selectStation resolves the --station flag against the registry; when the
// registry defines exactly one station the flag may be omitted.
func selectStation(registry *config.Registry, name string) (string, config.Station, error) {
	if name == "" {
		names := registry.StationNames()
		if len(names) == 1 {
			return names[0], registry.Stations[names[0]], nil
		}
		return "", config.Station{}, fmt.Errorf("--station is required (known: %v)", names)
	}

	station, err := registry.Station(name)
	if err != nil {
		return "", config.Station{}, err
	}
	return name, station, nil
}

// archiveRun records run metadata in the sqlite archive. Archiving is
// best-effort: the record set is already on disk, so failures only warn.
func archiveRun(run *models.FetchRun) {
	if err := database.Init(); err != nil {
		globals.Logger.Warn("Failed to open run archive", "error", err)
		return
	}

	if err := database.RecordRun(database.DB, run); err != nil {
		globals.Logger.Warn("Failed to archive fetch run", "run_id", run.RunID, "error", err)
		return
	}

	globals.Logger.Debug("Fetch run archived", "run_id", run.RunID)
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().IntVar(&fetchDaysBack, "days-back", 7, "Days of history to fetch")
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "Output parquet path (default data/raw/<station>_history.parquet)")
	fetchCmd.Flags().StringVarP(&fetchStation, "station", "s", "", "Station name from the registry")
	fetchCmd.Flags().StringVar(&fetchRegistry, "registry", "", "Station registry path (default: config dir)")
	fetchCmd.Flags().IntVar(&fetchTimeout, "timeout", 20, "HTTP timeout in seconds")
}
