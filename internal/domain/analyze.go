package domain

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
)

var errInvalidCoordinate = errors.New("coordinate out of range")

// Analyze runs the normalize, locate, classify and aggregate stages over one
// snapshot of raw records. Records that cannot be located are skipped with a
// warning. It returns ErrNoUsableData when nothing survives normalization or
// no record has a usable coordinate pair.
func Analyze(raws []RawStationRecord, ref ReferencePoint, logger *slog.Logger) (Analysis, error) {
	stations := NormalizeRecords(raws)
	if len(stations) == 0 {
		return Analysis{}, ErrNoUsableData
	}

	located := make([]EnrichedStation, 0, len(stations))
	for _, s := range stations {
		if !s.HasCoordinates() {
			continue
		}
		enriched, err := Locate(s, ref)
		if err != nil {
			logger.Warn("skipping station",
				"error", err,
				"site_id", s.SiteID,
				"site_name", s.SiteName,
			)
			continue
		}
		located = append(located, enriched)
	}
	if len(located) == 0 {
		return Analysis{}, fmt.Errorf("%d records without coordinates: %w", len(stations), ErrNoUsableData)
	}

	SortByDistance(located)

	return Analysis{
		Reference:  ref,
		Records:    stations,
		Stations:   located,
		Summary:    Summarize(stations, located),
		AnalyzedAt: clock.Now().UTC(),
	}, nil
}

// Locate computes the station's distance from ref and attaches its
// classification labels. The station must have coordinates.
func Locate(s StationRecord, ref ReferencePoint) (EnrichedStation, error) {
	if !s.HasCoordinates() {
		return EnrichedStation{}, errors.New("station has no coordinates")
	}
	lat, lon := *s.Latitude, *s.Longitude
	if !ValidCoordinate(lat, lon) {
		return EnrichedStation{}, fmt.Errorf("%w: lat=%v lon=%v", errInvalidCoordinate, lat, lon)
	}

	km := Haversine(ref.Latitude, ref.Longitude, lat, lon)
	if math.IsNaN(km) || math.IsInf(km, 0) {
		return EnrichedStation{}, fmt.Errorf("non-finite distance for lat=%v lon=%v", lat, lon)
	}

	return EnrichedStation{
		StationRecord: s,
		DistanceKm:    km,
		DistanceBand:  ClassifyDistance(km),
		AQILevel:      ClassifyAQILevel(s.AQI),
		AQICategory:   ClassifyAQICategory(s.AQI),
	}, nil
}
