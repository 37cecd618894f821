package domain

import (
	"cmp"
	"slices"
	"strings"

	"github.com/go-gota/gota/series"
)

// Pollutant field names used as keys in Summary.Pollutants.
const (
	PollutantPM25 = "pm25"
	PollutantPM10 = "pm10"
	PollutantO3   = "o3"
	PollutantCO   = "co"
	PollutantNO2  = "no2"
	PollutantSO2  = "so2"
)

// Pollutants lists the pollutant keys in report order.
var Pollutants = []string{PollutantPM25, PollutantPM10, PollutantO3, PollutantCO, PollutantNO2, PollutantSO2}

// ComputeFieldStats filters out missing values and summarizes the rest.
// StdDev is the sample standard deviation and is 0 for fewer than two values.
// Mean always lies within [Min, Max].
func ComputeFieldStats(values []*float64) FieldStats {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			present = append(present, *v)
		}
	}
	return summarizeValues(present)
}

func summarizeValues(values []float64) FieldStats {
	if len(values) == 0 {
		return FieldStats{}
	}
	s := series.New(values, series.Float, "values")
	stats := FieldStats{
		Count:  len(values),
		Min:    s.Min(),
		Max:    s.Max(),
		Median: s.Median(),
	}
	// Summation rounding can push the mean of identical fractional readings
	// just outside [Min, Max].
	stats.Mean = min(max(s.Mean(), stats.Min), stats.Max)
	if len(values) > 1 {
		stats.StdDev = s.StdDev()
	}
	return stats
}

// CompareByDistance orders located stations by distance, then site id, then
// site name.
func CompareByDistance(a, b EnrichedStation) int {
	return cmp.Or(
		cmp.Compare(a.DistanceKm, b.DistanceKm),
		strings.Compare(a.SiteID, b.SiteID),
		strings.Compare(a.SiteName, b.SiteName),
	)
}

// SortByDistance sorts stations in place by CompareByDistance.
func SortByDistance(stations []EnrichedStation) {
	slices.SortStableFunc(stations, CompareByDistance)
}

// Summarize aggregates normalized and located stations. Distance stats and
// the distance/level distributions cover located stations; AQI, pollutant
// stats and the category distribution cover every normalized record.
// Bands with no members are omitted from the distributions.
func Summarize(stations []StationRecord, located []EnrichedStation) Summary {
	summary := Summary{
		Count:         len(located),
		TotalStations: len(stations),
		Pollutants:    make(map[string]FieldStats, len(Pollutants)),
		DistanceBands: make(map[DistanceBand]int),
		AQILevels:     make(map[AQILevel]int),
		AQICategories: make(map[AQICategory]int),
	}

	aqi := make([]*float64, 0, len(stations))
	pollutants := make(map[string][]*float64, len(Pollutants))
	for _, s := range stations {
		aqi = append(aqi, s.AQI)
		pollutants[PollutantPM25] = append(pollutants[PollutantPM25], s.PM25)
		pollutants[PollutantPM10] = append(pollutants[PollutantPM10], s.PM10)
		pollutants[PollutantO3] = append(pollutants[PollutantO3], s.O3)
		pollutants[PollutantCO] = append(pollutants[PollutantCO], s.CO)
		pollutants[PollutantNO2] = append(pollutants[PollutantNO2], s.NO2)
		pollutants[PollutantSO2] = append(pollutants[PollutantSO2], s.SO2)

		if c := ClassifyAQICategory(s.AQI); c.Rated() {
			summary.AQICategories[c]++
		}
	}
	summary.AQI = ComputeFieldStats(aqi)
	for _, name := range Pollutants {
		summary.Pollutants[name] = ComputeFieldStats(pollutants[name])
	}

	if len(located) == 0 {
		return summary
	}

	distances := make([]float64, 0, len(located))
	nearest, farthest := located[0], located[0]
	for _, s := range located {
		distances = append(distances, s.DistanceKm)
		summary.DistanceBands[s.DistanceBand]++
		summary.AQILevels[s.AQILevel]++
		if CompareByDistance(s, nearest) < 0 {
			nearest = s
		}
		if CompareByDistance(s, farthest) > 0 {
			farthest = s
		}
	}
	summary.Distance = summarizeValues(distances)
	summary.Nearest = stationSummary(nearest)
	summary.Farthest = stationSummary(farthest)

	return summary
}

func stationSummary(s EnrichedStation) *StationSummary {
	return &StationSummary{
		SiteID:     s.SiteID,
		SiteName:   s.SiteName,
		County:     s.County,
		DistanceKm: s.DistanceKm,
	}
}
