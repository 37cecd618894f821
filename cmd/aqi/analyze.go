package main

import (
	"os"

	"github.com/couchcryptid/air-quality-etl/internal/observability"
	"github.com/couchcryptid/air-quality-etl/internal/report"
	"github.com/spf13/cobra"
)

var (
	analyzeOut   string
	analyzeNoCSV bool
	analyzeNoMap bool
	analyzeQuiet bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Fetch the current snapshot once and write the analysis outputs",
	Long: `Fetches the MOENV snapshot, analyzes it, and writes
aqi_data_<timestamp>.csv (every station), aqi_distance_analysis_<timestamp>.csv
(located stations) and aqi_map_<timestamp>.geojson to the output directory.
A summary is printed to stdout unless --quiet is set.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		outDir := analyzeOut
		if outDir == "" {
			outDir = cfg.OutputDir
		}

		s := buildSinks(outDir, !analyzeNoCSV, !analyzeNoMap)
		defer s.close()

		p, err := buildPipeline(s.loaders, observability.NewMetrics())
		if err != nil {
			return err
		}

		a, runErr := p.RunOnce(ctx)
		if len(a.Stations) == 0 {
			return runErr
		}
		if !analyzeQuiet {
			if err := report.Write(os.Stdout, a); err != nil {
				return err
			}
		}
		return runErr
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "output directory (default: $OUTPUT_DIR or ./outputs)")
	analyzeCmd.Flags().BoolVar(&analyzeNoCSV, "no-csv", false, "skip writing the CSV tables")
	analyzeCmd.Flags().BoolVar(&analyzeNoMap, "no-map", false, "skip writing the GeoJSON map layer")
	analyzeCmd.Flags().BoolVarP(&analyzeQuiet, "quiet", "q", false, "do not print the summary")
	rootCmd.AddCommand(analyzeCmd)
}
