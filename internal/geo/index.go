// Package geo provides spatial lookups over located monitoring stations.
package geo

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/dhconnelly/rtreego"
)

const (
	dimensions  = 2
	minChildren = 25
	maxChildren = 50
	tolerance   = 1e-9

	// kmPerDegreeLat is the length of one degree of latitude.
	kmPerDegreeLat = math.Pi * domain.EarthRadiusKm / 180
)

// ErrInvalidQuery is returned for out-of-range query coordinates or sizes.
var ErrInvalidQuery = errors.New("invalid spatial query")

// indexedStation wraps a station to implement rtreego.Spatial.
type indexedStation struct {
	station domain.EnrichedStation
	rect    *rtreego.Rect
}

func (s *indexedStation) Bounds() *rtreego.Rect {
	return s.rect
}

// Match is a station found by a query with its distance from the query point.
type Match struct {
	Station    domain.EnrichedStation `json:"station"`
	DistanceKm float64                `json:"distance_km"`
}

// StationIndex is an R-tree over located stations, keyed by (lat, lon).
// It is immutable after construction and safe for concurrent reads.
type StationIndex struct {
	tree *rtreego.Rtree
	size int
}

// NewStationIndex indexes every station that has coordinates.
func NewStationIndex(stations []domain.EnrichedStation) *StationIndex {
	idx := &StationIndex{tree: rtreego.NewTree(dimensions, minChildren, maxChildren)}
	for _, s := range stations {
		if !s.HasCoordinates() {
			continue
		}
		p := rtreego.Point{*s.Latitude, *s.Longitude}
		idx.tree.Insert(&indexedStation{station: s, rect: p.ToRect(tolerance)})
		idx.size++
	}
	return idx
}

// Len returns the number of indexed stations.
func (idx *StationIndex) Len() int { return idx.size }

// Nearest returns up to k stations closest to (lat, lon) by great-circle
// distance, nearest first.
//
// Candidates come from the tree's planar degree metric: max(2k, k+8) of them
// are fetched and re-ranked by haversine. Across a regional network this
// always contains the true k nearest; near the poles or the antimeridian,
// where degree distance diverges from great-circle distance, a true neighbor
// can fall outside the candidate set.
func (idx *StationIndex) Nearest(lat, lon float64, k int) ([]Match, error) {
	if !domain.ValidCoordinate(lat, lon) || k <= 0 {
		return nil, fmt.Errorf("%w: lat=%v lon=%v k=%d", ErrInvalidQuery, lat, lon, k)
	}
	if idx.size == 0 {
		return nil, nil
	}

	// The tree ranks by planar degree distance, so over-fetch and re-rank.
	candidates := min(idx.size, max(2*k, k+8))
	results := idx.tree.NearestNeighbors(candidates, rtreego.Point{lat, lon})

	matches := toMatches(lat, lon, results)
	sortMatches(matches)
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// WithinRadius returns every station within radiusKm of (lat, lon), nearest
// first. The bounding-box prefilter is split in two when it crosses the
// antimeridian, and spans every longitude when it reaches a pole.
func (idx *StationIndex) WithinRadius(lat, lon, radiusKm float64) ([]Match, error) {
	if !domain.ValidCoordinate(lat, lon) || radiusKm <= 0 || math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return nil, fmt.Errorf("%w: lat=%v lon=%v radius_km=%v", ErrInvalidQuery, lat, lon, radiusKm)
	}
	if idx.size == 0 {
		return nil, nil
	}

	dLat := radiusKm / kmPerDegreeLat
	dLon := 360.0
	if c := math.Cos(lat * math.Pi / 180); c > 1e-6 && lat+dLat < 90 && lat-dLat > -90 {
		dLon = min(dLat/c, 360)
	}
	var results []rtreego.Spatial
	for _, span := range lonSpans(lon-dLon, lon+dLon) {
		bounds, err := rtreego.NewRect(
			rtreego.Point{lat - dLat, span[0]},
			[]float64{2 * dLat, span[1] - span[0]},
		)
		if err != nil {
			return nil, fmt.Errorf("build search box: %w", err)
		}
		results = append(results, idx.tree.SearchIntersect(bounds)...)
	}

	all := toMatches(lat, lon, results)
	matches := all[:0]
	for _, m := range all {
		if m.DistanceKm <= radiusKm {
			matches = append(matches, m)
		}
	}
	sortMatches(matches)
	return matches, nil
}

// lonSpans splits [from, to] into one or two ranges within [-180, 180].
func lonSpans(from, to float64) [][2]float64 {
	switch {
	case to-from >= 360:
		return [][2]float64{{-180, 180}}
	case from < -180:
		return [][2]float64{{from + 360, 180}, {-180, to}}
	case to > 180:
		return [][2]float64{{from, 180}, {-180, to - 360}}
	default:
		return [][2]float64{{from, to}}
	}
}

func toMatches(lat, lon float64, results []rtreego.Spatial) []Match {
	matches := make([]Match, 0, len(results))
	for _, r := range results {
		item, ok := r.(*indexedStation)
		if !ok {
			continue
		}
		s := item.station
		matches = append(matches, Match{
			Station:    s,
			DistanceKm: domain.Haversine(lat, lon, *s.Latitude, *s.Longitude),
		})
	}
	return matches
}

func sortMatches(matches []Match) {
	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Or(
			cmp.Compare(a.DistanceKm, b.DistanceKm),
			domain.CompareByDistance(a.Station, b.Station),
		)
	})
}
