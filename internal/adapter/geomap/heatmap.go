package geomap

import (
	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/go-gota/gota/series"
)

// Point is a (latitude, longitude) pair in decimal degrees.
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HeatPoint is one weighted heatmap sample encoded as [lat, lon, aqi].
type HeatPoint [3]float64

// Heatmap is an AQI intensity layer: one sample per located station that
// reports AQI, centered on the mean of those samples.
type Heatmap struct {
	Center *Point      `json:"center"`
	Points []HeatPoint `json:"points"`
}

// Center returns the mean latitude and longitude of the stations that have
// coordinates. It reports false when there are none.
func Center(stations []domain.EnrichedStation) (Point, bool) {
	lats := make([]float64, 0, len(stations))
	lons := make([]float64, 0, len(stations))
	for _, s := range stations {
		if !s.HasCoordinates() {
			continue
		}
		lats = append(lats, *s.Latitude)
		lons = append(lons, *s.Longitude)
	}
	if len(lats) == 0 {
		return Point{}, false
	}
	return Point{
		Latitude:  series.New(lats, series.Float, "latitude").Mean(),
		Longitude: series.New(lons, series.Float, "longitude").Mean(),
	}, true
}

// NewHeatmap builds the heatmap layer for a. Stations without AQI carry no
// weight and are left out, so the center only reflects weighted samples.
func NewHeatmap(a domain.Analysis) Heatmap {
	weighted := make([]domain.EnrichedStation, 0, len(a.Stations))
	hm := Heatmap{Points: make([]HeatPoint, 0, len(a.Stations))}
	for _, s := range a.Stations {
		if !s.HasCoordinates() || s.AQI == nil {
			continue
		}
		weighted = append(weighted, s)
		hm.Points = append(hm.Points, HeatPoint{*s.Latitude, *s.Longitude, *s.AQI})
	}
	if c, ok := Center(weighted); ok {
		hm.Center = &c
	}
	return hm
}
