package domain

import (
	"errors"
	"time"
)

// ErrNoUsableData is returned by Analyze when the input yields no records, or
// no records with a usable coordinate pair.
var ErrNoUsableData = errors.New("no usable station data")

// RawStationRecord is one upstream record as decoded from JSON. Values may be
// strings, json.Number, float64, integers, nil, or anything else the upstream
// sends; the normalizer treats unknown types as missing.
type RawStationRecord map[string]any

// Upstream field keys of the MOENV aqx_p_432 dataset.
const (
	keySiteID        = "siteid"
	keySiteName      = "sitename"
	keyCounty        = "county"
	keyAQI           = "aqi"
	keyPM25          = "pm2.5"
	keyPM10          = "pm10"
	keyO3            = "o3"
	keyCO            = "co"
	keyNO2           = "no2"
	keySO2           = "so2"
	keyStatus        = "status"
	keyPollutant     = "pollutant"
	keyLatitude      = "latitude"
	keyLongitude     = "longitude"
	keyPublishTime   = "publishtime"
	keyWindSpeed     = "wind_speed"
	keyWindDirection = "wind_direc"
)

// StationRecord is a normalized monitoring-station reading. Optional
// measurements are nil when the upstream value is missing or malformed, so a
// missing reading never collapses into zero.
type StationRecord struct {
	SiteID        string     `json:"site_id"`
	SiteName      string     `json:"site_name"`
	County        string     `json:"county"`
	Status        string     `json:"status"`
	Pollutant     string     `json:"pollutant"`
	AQI           *float64   `json:"aqi"`
	PM25          *float64   `json:"pm25"`
	PM10          *float64   `json:"pm10"`
	O3            *float64   `json:"o3"`
	CO            *float64   `json:"co"`
	NO2           *float64   `json:"no2"`
	SO2           *float64   `json:"so2"`
	Latitude      *float64   `json:"latitude"`
	Longitude     *float64   `json:"longitude"`
	WindSpeed     *float64   `json:"wind_speed"`
	WindDirection *float64   `json:"wind_direction"`
	PublishTime   *time.Time `json:"publish_time"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (s StationRecord) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// EnrichedStation is a located station annotated with its distance from the
// reference point and its classification labels.
type EnrichedStation struct {
	StationRecord
	DistanceKm   float64      `json:"distance_km"`
	DistanceBand DistanceBand `json:"distance_band"`
	AQILevel     AQILevel     `json:"aqi_level"`
	AQICategory  AQICategory  `json:"aqi_category"`
}

// ReferencePoint is the fixed origin that distances are measured from.
type ReferencePoint struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// TaipeiMainStation is the default reference point.
var TaipeiMainStation = ReferencePoint{
	Name:      "Taipei Main Station",
	Latitude:  25.0478,
	Longitude: 121.5170,
}

// FieldStats summarizes the non-missing values of one numeric field.
// All fields are zero when Count is zero.
type FieldStats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// StationSummary identifies a station in the summary's extreme entries.
type StationSummary struct {
	SiteID     string  `json:"site_id"`
	SiteName   string  `json:"site_name"`
	County     string  `json:"county"`
	DistanceKm float64 `json:"distance_km"`
}

// Summary aggregates an analysis run. Count covers located stations;
// TotalStations covers every normalized record.
type Summary struct {
	Count         int                   `json:"count"`
	TotalStations int                   `json:"total_stations"`
	Distance      FieldStats            `json:"distance_km"`
	AQI           FieldStats            `json:"aqi"`
	Pollutants    map[string]FieldStats `json:"pollutants"`
	DistanceBands map[DistanceBand]int  `json:"distance_bands"`
	AQILevels     map[AQILevel]int      `json:"aqi_levels"`
	AQICategories map[AQICategory]int   `json:"aqi_categories"`
	Nearest       *StationSummary       `json:"nearest,omitempty"`
	Farthest      *StationSummary       `json:"farthest,omitempty"`
}

// Analysis is the result of one analyze run. Records holds every normalized
// record in county/site order, located or not; Stations holds the located
// ones nearest first.
type Analysis struct {
	Reference  ReferencePoint    `json:"reference"`
	Records    []StationRecord   `json:"records"`
	Stations   []EnrichedStation `json:"stations"`
	Summary    Summary           `json:"summary"`
	AnalyzedAt time.Time         `json:"analyzed_at"`
}
