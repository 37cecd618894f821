// Package report renders an analysis as a plain-text summary for terminals.
package report

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

// nearestRows is how many stations the nearest-stations table lists.
const nearestRows = 10

// Write prints the summary of a to w.
func Write(w io.Writer, a domain.Analysis) error {
	s := a.Summary
	p := &printer{w: w}

	p.printf("Air quality distance analysis\n")
	p.printf("Reference: %s (%.4f, %.4f)\n", a.Reference.Name, a.Reference.Latitude, a.Reference.Longitude)
	p.printf("Analyzed:  %s\n\n", a.AnalyzedAt.Format(time.RFC3339))

	p.printf("Stations:  %d total, %d located\n", s.TotalStations, s.Count)
	if s.Distance.Count > 0 {
		p.printf("Distance:  min %.2f km | max %.2f km | mean %.2f km | median %.2f km\n",
			s.Distance.Min, s.Distance.Max, s.Distance.Mean, s.Distance.Median)
	}
	if s.Nearest != nil {
		p.printf("Nearest:   %s (%s) %.2f km\n", s.Nearest.SiteName, s.Nearest.County, s.Nearest.DistanceKm)
	}
	if s.Farthest != nil {
		p.printf("Farthest:  %s (%s) %.2f km\n", s.Farthest.SiteName, s.Farthest.County, s.Farthest.DistanceKm)
	}
	if s.AQI.Count > 0 {
		p.printf("AQI:       %d reporting | mean %.1f | range %.0f-%.0f | std dev %.1f\n",
			s.AQI.Count, s.AQI.Mean, s.AQI.Min, s.AQI.Max, s.AQI.StdDev)
	} else {
		p.printf("AQI:       no stations reporting\n")
	}

	p.printf("\nDistance bands\n")
	for _, b := range domain.DistanceBands {
		if n := s.DistanceBands[b]; n > 0 {
			p.printf("  %-16s %3d\n", b, n)
		}
	}

	p.printf("\nAQI categories\n")
	for _, c := range domain.AQICategories {
		if n := s.AQICategories[c]; n > 0 {
			p.printf("  %-20s %3d\n", c, n)
		}
	}

	if p.err != nil {
		return p.err
	}
	return writeNearest(w, a.Stations)
}

func writeNearest(w io.Writer, stations []domain.EnrichedStation) error {
	if len(stations) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\nNearest %d stations\n", min(nearestRows, len(stations))); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  #\tSITE\tCOUNTY\tKM\tAQI\tBAND") //nolint:errcheck // flushed below
	for i, s := range stations {
		if i == nearestRows {
			break
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%.2f\t%s\t%s\n", //nolint:errcheck // flushed below
			i+1, s.SiteName, s.County, s.DistanceKm, formatAQI(s.AQI), s.DistanceBand)
	}
	return tw.Flush()
}

func formatAQI(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// printer remembers the first write error so callers check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
