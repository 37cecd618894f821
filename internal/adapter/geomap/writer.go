package geomap

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// FeatureCollection builds one point feature per located station, styled by
// AQI level. Stations without coordinates are skipped.
func FeatureCollection(a domain.Analysis) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(a.Stations))}
	bounds := geom.NewBounds(geom.XY)

	for _, s := range a.Stations {
		if !s.HasCoordinates() {
			continue
		}
		pt := geom.NewPointFlat(geom.XY, []float64{*s.Longitude, *s.Latitude})
		bounds.Extend(pt)

		var aqi any
		if s.AQI != nil {
			aqi = *s.AQI
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       s.SiteID,
			Geometry: pt,
			Properties: map[string]any{
				"site_id":       s.SiteID,
				"site_name":     s.SiteName,
				"county":        s.County,
				"aqi":           aqi,
				"aqi_level":     string(s.AQILevel),
				"aqi_category":  string(s.AQICategory),
				"color":         s.AQILevel.Color(),
				"radius":        domain.MarkerRadius(s.AQI),
				"distance_km":   s.DistanceKm,
				"distance_band": string(s.DistanceBand),
			},
		})
	}

	if len(fc.Features) > 0 {
		fc.BBox = bounds
	}
	return fc
}

// Encode renders the analysis as a GeoJSON FeatureCollection. When any
// station is located, the mean station position is added as a "center"
// foreign member in [lon, lat] order for map viewers.
func Encode(a domain.Analysis) ([]byte, error) {
	data, err := json.Marshal(FeatureCollection(a))
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	c, ok := Center(a.Stations)
	if !ok {
		return data, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	if doc["center"], err = json.Marshal([]float64{c.Longitude, c.Latitude}); err != nil {
		return nil, fmt.Errorf("encode geojson center: %w", err)
	}
	if data, err = json.Marshal(doc); err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	return data, nil
}

// FileName returns the map file name for an analysis run at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("aqi_map_%s.geojson", t.Format("20060102_150405"))
}

// Writer persists analyses as timestamped GeoJSON files.
// It implements pipeline.Loader.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer that stores files under dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

func (w *Writer) Name() string { return "geojson" }

// Load writes the map for a to a new GeoJSON file.
func (w *Writer) Load(_ context.Context, a domain.Analysis) error {
	data, err := Encode(a)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(w.dir, FileName(a.AnalyzedAt))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write geojson: %w", err)
	}
	w.logger.Info("map written", "path", path, "features", len(a.Stations))
	return nil
}
