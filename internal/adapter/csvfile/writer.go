package csvfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/jszwec/csvutil"
)

// utf8BOM lets spreadsheet tools detect the encoding of the Chinese site names.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// row is the flat CSV shape of an enriched station. Nil optionals encode as
// empty cells.
type row struct {
	SiteID        string     `csv:"site_id"`
	SiteName      string     `csv:"site_name"`
	County        string     `csv:"county"`
	Latitude      *float64   `csv:"latitude"`
	Longitude     *float64   `csv:"longitude"`
	DistanceKm    float64    `csv:"distance_km"`
	DistanceBand  string     `csv:"distance_band"`
	AQI           *float64   `csv:"aqi"`
	AQILevel      string     `csv:"aqi_level"`
	AQICategory   string     `csv:"aqi_category"`
	Status        string     `csv:"status"`
	Pollutant     string     `csv:"pollutant"`
	PM25          *float64   `csv:"pm25"`
	PM10          *float64   `csv:"pm10"`
	O3            *float64   `csv:"o3"`
	CO            *float64   `csv:"co"`
	NO2           *float64   `csv:"no2"`
	SO2           *float64   `csv:"so2"`
	WindSpeed     *float64   `csv:"wind_speed"`
	WindDirection *float64   `csv:"wind_direction"`
	PublishTime   *time.Time `csv:"publish_time"`
}

func toRow(s domain.EnrichedStation) row {
	return row{
		SiteID:        s.SiteID,
		SiteName:      s.SiteName,
		County:        s.County,
		Latitude:      s.Latitude,
		Longitude:     s.Longitude,
		DistanceKm:    s.DistanceKm,
		DistanceBand:  string(s.DistanceBand),
		AQI:           s.AQI,
		AQILevel:      string(s.AQILevel),
		AQICategory:   string(s.AQICategory),
		Status:        s.Status,
		Pollutant:     s.Pollutant,
		PM25:          s.PM25,
		PM10:          s.PM10,
		O3:            s.O3,
		CO:            s.CO,
		NO2:           s.NO2,
		SO2:           s.SO2,
		WindSpeed:     s.WindSpeed,
		WindDirection: s.WindDirection,
		PublishTime:   s.PublishTime,
	}
}

// Marshal encodes stations as CSV with a header row and a UTF-8 BOM.
func Marshal(stations []domain.EnrichedStation) ([]byte, error) {
	rows := make([]row, len(stations))
	for i := range stations {
		rows[i] = toRow(stations[i])
	}
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return append(append([]byte{}, utf8BOM...), data...), nil
}

// FileName returns the export file name for an analysis run at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("aqi_distance_analysis_%s.csv", t.Format("20060102_150405"))
}

// Writer persists analyses as timestamped CSV files.
// It implements pipeline.Loader.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer that stores files under dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

func (w *Writer) Name() string { return "csv" }

// Load writes the located stations of a to a new CSV file.
func (w *Writer) Load(_ context.Context, a domain.Analysis) error {
	data, err := Marshal(a.Stations)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(w.dir, FileName(a.AnalyzedAt))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	w.logger.Info("csv written", "path", path, "rows", len(a.Stations))
	return nil
}
