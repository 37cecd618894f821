// Command aqi fetches the MOENV real-time air-quality snapshot, measures each
// monitoring station's great-circle distance from Taipei Main Station, and
// publishes the enriched stations as CSV, GeoJSON, Kafka messages, or an HTTP API.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
