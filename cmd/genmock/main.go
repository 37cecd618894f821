// Command genmock analyzes a MOENV snapshot fixture with the real domain
// package and writes the resulting analysis as JSON, CSV, and GeoJSON fixtures
// for downstream consumers of the Kafka topic and HTTP API.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -snapshot data/mock/aqx_p_432_snapshot.json \
//	  -out-dir data/mock
package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/air-quality-etl/internal/adapter/geomap"
	"github.com/couchcryptid/air-quality-etl/internal/adapter/moenv"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// analyzedAt is fixed so regenerated fixtures are byte-stable.
var analyzedAt = time.Date(2024, time.April, 26, 7, 0, 0, 0, time.UTC)

func main() {
	snapshot := flag.String("snapshot", "data/mock/aqx_p_432_snapshot.json", "path to a MOENV aqx_p_432 JSON snapshot")
	outDir := flag.String("out-dir", "data/mock", "directory for generated fixtures")
	flag.Parse()

	domain.SetClock(clockwork.NewFakeClockAt(analyzedAt))
	defer domain.SetClock(nil)

	f, err := os.Open(*snapshot)
	if err != nil {
		log.Fatalf("open snapshot: %v", err)
	}
	raws, err := moenv.DecodeRecords(f)
	f.Close()
	if err != nil {
		log.Fatalf("decode snapshot: %v", err)
	}

	a, err := domain.Analyze(raws, domain.TaipeiMainStation, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		log.Fatalf("analyze: %v", err)
	}

	analysisJSON, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		log.Fatalf("marshal analysis: %v", err)
	}
	csvData, err := csvfile.Marshal(a.Stations)
	if err != nil {
		log.Fatalf("marshal csv: %v", err)
	}
	mapData, err := geomap.Encode(a)
	if err != nil {
		log.Fatalf("marshal geojson: %v", err)
	}

	outputs := map[string][]byte{
		"aqx_p_432_analysis.json":    append(analysisJSON, '\n'),
		"aqx_p_432_analysis.csv":     csvData,
		"aqx_p_432_analysis.geojson": mapData,
	}
	for name, data := range outputs {
		path := filepath.Join(*outDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		log.Printf("wrote %s (%d bytes)", path, len(data))
	}
	log.Printf("%d records, %d located", a.Summary.TotalStations, a.Summary.Count)
}
