package domain

import "math"

// DistanceBand labels how far a station is from the reference point.
type DistanceBand string

// Distance bands in ascending order of distance.
const (
	BandUrbanCore      DistanceBand = "urban-core"
	BandMetroRegion    DistanceBand = "metro-region"
	BandNorthernRegion DistanceBand = "northern-region"
	BandCentralRegion  DistanceBand = "central-region"
	BandSouthernRegion DistanceBand = "southern-region"
)

// DistanceBands lists every band in report order.
var DistanceBands = []DistanceBand{
	BandUrbanCore,
	BandMetroRegion,
	BandNorthernRegion,
	BandCentralRegion,
	BandSouthernRegion,
}

// ClassifyDistance maps a distance in kilometers to its band. Upper bounds are
// inclusive and the first matching band wins:
//
//	<= 10 km   urban-core
//	<= 30 km   metro-region
//	<= 100 km  northern-region
//	<= 200 km  central-region
//	otherwise  southern-region
func ClassifyDistance(km float64) DistanceBand {
	switch {
	case km <= 10:
		return BandUrbanCore
	case km <= 30:
		return BandMetroRegion
	case km <= 100:
		return BandNorthernRegion
	case km <= 200:
		return BandCentralRegion
	default:
		return BandSouthernRegion
	}
}

// AQILevel is the coarse three-level AQI severity used for map coloring.
type AQILevel string

// Coarse AQI levels.
const (
	LevelGood      AQILevel = "good"
	LevelModerate  AQILevel = "moderate"
	LevelUnhealthy AQILevel = "unhealthy"
	LevelNoData    AQILevel = "no-data"
)

// AQILevels lists every coarse level in report order.
var AQILevels = []AQILevel{LevelGood, LevelModerate, LevelUnhealthy, LevelNoData}

// ClassifyAQILevel maps an AQI value to its coarse level; nil is no-data.
func ClassifyAQILevel(aqi *float64) AQILevel {
	if aqi == nil {
		return LevelNoData
	}
	switch {
	case *aqi <= 50:
		return LevelGood
	case *aqi <= 100:
		return LevelModerate
	default:
		return LevelUnhealthy
	}
}

// Color returns the map marker color for the level.
func (l AQILevel) Color() string {
	switch l {
	case LevelGood:
		return "#00E400"
	case LevelModerate:
		return "#FFFF00"
	case LevelUnhealthy:
		return "#FF0000"
	default:
		return "#808080"
	}
}

// MarkerRadius scales a map marker with the AQI value.
func MarkerRadius(aqi *float64) float64 {
	if aqi == nil {
		return 8
	}
	return 10 + *aqi/20
}

// AQICategory is the fine six-level AQI severity.
type AQICategory string

// Fine AQI categories. CategoryNoData and CategoryUnrated are annotations only
// and are never counted in a distribution.
const (
	CategoryGood               AQICategory = "good"
	CategoryModerate           AQICategory = "moderate"
	CategoryUnhealthySensitive AQICategory = "unhealthy-sensitive"
	CategoryUnhealthyAll       AQICategory = "unhealthy-all"
	CategoryVeryUnhealthy      AQICategory = "very-unhealthy"
	CategoryHazardous          AQICategory = "hazardous"
	CategoryNoData             AQICategory = "no-data"
	CategoryUnrated            AQICategory = "unrated"
)

// AQICategories lists the six rated categories in ascending severity.
var AQICategories = []AQICategory{
	CategoryGood,
	CategoryModerate,
	CategoryUnhealthySensitive,
	CategoryUnhealthyAll,
	CategoryVeryUnhealthy,
	CategoryHazardous,
}

// ClassifyAQICategory maps an AQI value onto the fine scale. Ranges are
// upper-inclusive so every value in [0, 500] has exactly one category:
//
//	[0, 50]     good
//	(50, 100]   moderate
//	(100, 150]  unhealthy-sensitive
//	(150, 200]  unhealthy-all
//	(200, 300]  very-unhealthy
//	(300, 500]  hazardous
//
// nil yields no-data; values outside [0, 500] yield unrated.
func ClassifyAQICategory(aqi *float64) AQICategory {
	if aqi == nil {
		return CategoryNoData
	}
	v := *aqi
	switch {
	case math.IsNaN(v) || v < 0 || v > 500:
		return CategoryUnrated
	case v <= 50:
		return CategoryGood
	case v <= 100:
		return CategoryModerate
	case v <= 150:
		return CategoryUnhealthySensitive
	case v <= 200:
		return CategoryUnhealthyAll
	case v <= 300:
		return CategoryVeryUnhealthy
	default:
		return CategoryHazardous
	}
}

// Rated reports whether c is one of the six counted categories.
func (c AQICategory) Rated() bool {
	return c != CategoryNoData && c != CategoryUnrated && c != ""
}
