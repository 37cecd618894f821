// Command validate runs data integrity checks against a MOENV snapshot fixture.
// It analyzes the snapshot with the real domain package and verifies record
// accounting, the coordinate filter, band coverage, statistics bounds, and the
// CSV export row count.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -snapshot data/mock/aqx_p_432_snapshot.json \
//	  -csv-out /tmp/aqi.csv
package main

import (
	"bytes"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/air-quality-etl/internal/adapter/moenv"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	snapshot := flag.String("snapshot", "data/mock/aqx_p_432_snapshot.json", "path to a MOENV aqx_p_432 JSON snapshot")
	csvOut := flag.String("csv-out", "", "optional path to write the CSV export")
	flag.Parse()

	if *snapshot == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*snapshot, *csvOut); code != 0 {
		os.Exit(code)
	}
}

func run(snapshotPath, csvOut string) int {
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.April, 26, 7, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Air Quality Data Integrity Validation ===")
	fmt.Println()

	raws, err := loadSnapshot(snapshotPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load snapshot: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := domain.Analyze(raws, domain.TaipeiMainStation, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: analyze: %v\n", err)
		return 1
	}

	data, err := csvfile.Marshal(a.Stations)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: marshal csv: %v\n", err)
		return 1
	}
	if csvOut != "" {
		if err := os.WriteFile(csvOut, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: write csv: %v\n", err)
			return 1
		}
	}

	phases := []*phase{
		validateNormalization(raws, a),
		validateCoordinateFilter(a),
		validateBandCoverage(a),
		validateStatistics(a),
		validateCSVExport(data, a),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d raw, %d normalized, %d located\n", len(raws), a.Summary.TotalStations, a.Summary.Count)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadSnapshot(path string) ([]domain.RawStationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return moenv.DecodeRecords(f)
}

// ── Phase 1: Normalization ──
// Every raw record yields exactly one normalized record.

func validateNormalization(raws []domain.RawStationRecord, a domain.Analysis) *phase {
	p := &phase{name: "Phase 1: Normalization (one per input)"}

	if a.Summary.TotalStations != len(raws) {
		p.errorf("total stations: expected %d, got %d", len(raws), a.Summary.TotalStations)
	}
	normalized := domain.NormalizeRecords(raws)
	if len(normalized) != len(raws) {
		p.errorf("normalized count: expected %d, got %d", len(raws), len(normalized))
	}
	for i := range normalized {
		if v := normalized[i].AQI; v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			p.errorf("record %d (%s): non-finite AQI", i, normalized[i].SiteName)
		}
	}
	return p
}

// ── Phase 2: Coordinate Filter ──
// Every enriched station has usable coordinates and a consistent distance.

func validateCoordinateFilter(a domain.Analysis) *phase {
	p := &phase{name: "Phase 2: Coordinate Filter"}

	if len(a.Stations) != a.Summary.Count {
		p.errorf("station count: summary says %d, output has %d", a.Summary.Count, len(a.Stations))
	}
	ref := a.Reference
	for i := range a.Stations {
		s := &a.Stations[i]
		if !s.HasCoordinates() {
			p.errorf("station %s: missing coordinates in spatial output", s.SiteName)
			continue
		}
		if *s.Latitude == 0 || *s.Longitude == 0 {
			p.errorf("station %s: zero coordinate in spatial output", s.SiteName)
		}
		want := domain.Haversine(ref.Latitude, ref.Longitude, *s.Latitude, *s.Longitude)
		if math.Abs(want-s.DistanceKm) > 1e-6 {
			p.errorf("station %s: distance %.6f, recomputed %.6f", s.SiteName, s.DistanceKm, want)
		}
		if s.DistanceKm < 0 {
			p.errorf("station %s: negative distance %.3f", s.SiteName, s.DistanceKm)
		}
		if i > 0 && a.Stations[i-1].DistanceKm > s.DistanceKm {
			p.errorf("station %s: output not sorted by distance", s.SiteName)
		}
	}
	return p
}

// ── Phase 3: Band Coverage ──
// Distance band and AQI level counts each account for every located station.

func validateBandCoverage(a domain.Analysis) *phase {
	p := &phase{name: "Phase 3: Band Coverage"}

	sum := func(m map[string]int) int {
		n := 0
		for _, v := range m {
			n += v
		}
		return n
	}

	bands := make(map[string]int, len(a.Summary.DistanceBands))
	for k, v := range a.Summary.DistanceBands {
		bands[string(k)] = v
	}
	if got := sum(bands); got != a.Summary.Count {
		p.errorf("distance bands sum to %d, expected %d", got, a.Summary.Count)
	}

	levels := make(map[string]int, len(a.Summary.AQILevels))
	for k, v := range a.Summary.AQILevels {
		levels[string(k)] = v
	}
	if got := sum(levels); got != a.Summary.Count {
		p.errorf("AQI levels sum to %d, expected %d", got, a.Summary.Count)
	}

	for i := range a.Stations {
		s := &a.Stations[i]
		if want := domain.ClassifyDistance(s.DistanceKm); s.DistanceBand != want {
			p.errorf("station %s: band %s, expected %s", s.SiteName, s.DistanceBand, want)
		}
	}
	return p
}

// ── Phase 4: Statistics ──
// Descriptive statistics respect their ordering bounds.

func validateStatistics(a domain.Analysis) *phase {
	p := &phase{name: "Phase 4: Statistics Invariants"}

	check := func(label string, fs domain.FieldStats) {
		if fs.Count == 0 {
			return
		}
		if fs.Min > fs.Median || fs.Median > fs.Max {
			p.errorf("%s: median %.3f outside [%.3f, %.3f]", label, fs.Median, fs.Min, fs.Max)
		}
		if fs.Min > fs.Mean || fs.Mean > fs.Max {
			p.errorf("%s: mean %.3f outside [%.3f, %.3f]", label, fs.Mean, fs.Min, fs.Max)
		}
		if fs.StdDev < 0 {
			p.errorf("%s: negative std dev %.3f", label, fs.StdDev)
		}
	}
	check("distance_km", a.Summary.Distance)
	check("aqi", a.Summary.AQI)
	for _, name := range domain.Pollutants {
		check(name, a.Summary.Pollutants[name])
	}

	rated := 0
	for c, n := range a.Summary.AQICategories {
		if c.Rated() {
			rated += n
		}
	}
	if rated > a.Summary.AQI.Count {
		p.errorf("AQI categories count %d stations, only %d report AQI", rated, a.Summary.AQI.Count)
	}

	if s := a.Summary; s.Count > 0 {
		if s.Nearest == nil || s.Farthest == nil {
			p.errorf("nearest/farthest missing with %d located stations", s.Count)
		} else if s.Nearest.DistanceKm > s.Farthest.DistanceKm {
			p.errorf("nearest %.3f km is farther than farthest %.3f km", s.Nearest.DistanceKm, s.Farthest.DistanceKm)
		}
	}
	return p
}

// ── Phase 5: CSV Export ──
// The CSV export has a header plus one row per located station.

func validateCSVExport(data []byte, a domain.Analysis) *phase {
	p := &phase{name: "Phase 5: CSV Export"}

	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		p.errorf("parse csv: %v", err)
		return p
	}
	if len(rows) == 0 {
		p.errorf("csv has no header row")
		return p
	}
	if got := len(rows) - 1; got != len(a.Stations) {
		p.errorf("csv rows: expected %d, got %d", len(a.Stations), got)
	}
	return p
}
