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

// recordRow is the flat CSV shape of a normalized station, located or not.
type recordRow struct {
	SiteID        string     `csv:"site_id"`
	SiteName      string     `csv:"site_name"`
	County        string     `csv:"county"`
	AQI           *float64   `csv:"aqi"`
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
	Latitude      *float64   `csv:"latitude"`
	Longitude     *float64   `csv:"longitude"`
	PublishTime   *time.Time `csv:"publish_time"`
}

// MarshalRecords encodes every normalized record as CSV with a header row and
// a UTF-8 BOM. Records without coordinates keep empty latitude and longitude.
func MarshalRecords(records []domain.StationRecord) ([]byte, error) {
	rows := make([]recordRow, len(records))
	for i, r := range records {
		rows[i] = recordRow{
			SiteID:        r.SiteID,
			SiteName:      r.SiteName,
			County:        r.County,
			AQI:           r.AQI,
			Status:        r.Status,
			Pollutant:     r.Pollutant,
			PM25:          r.PM25,
			PM10:          r.PM10,
			O3:            r.O3,
			CO:            r.CO,
			NO2:           r.NO2,
			SO2:           r.SO2,
			WindSpeed:     r.WindSpeed,
			WindDirection: r.WindDirection,
			Latitude:      r.Latitude,
			Longitude:     r.Longitude,
			PublishTime:   r.PublishTime,
		}
	}
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return append(append([]byte{}, utf8BOM...), data...), nil
}

// SnapshotFileName returns the snapshot file name for a run at t.
func SnapshotFileName(t time.Time) string {
	return fmt.Sprintf("aqi_data_%s.csv", t.Format("20060102_150405"))
}

// SnapshotWriter persists the full normalized snapshot, including stations
// that have no coordinates. It implements pipeline.Loader.
type SnapshotWriter struct {
	dir    string
	logger *slog.Logger
}

// NewSnapshotWriter creates a SnapshotWriter that stores files under dir.
func NewSnapshotWriter(dir string, logger *slog.Logger) *SnapshotWriter {
	return &SnapshotWriter{dir: dir, logger: logger}
}

func (w *SnapshotWriter) Name() string { return "csv-snapshot" }

// Load writes every normalized record of a to a new CSV file.
func (w *SnapshotWriter) Load(_ context.Context, a domain.Analysis) error {
	data, err := MarshalRecords(a.Records)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(w.dir, SnapshotFileName(a.AnalyzedAt))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	w.logger.Info("snapshot csv written", "path", path, "rows", len(a.Records))
	return nil
}
