package geo

import (
	"testing"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func station(name string, lat, lon float64) domain.EnrichedStation {
	return domain.EnrichedStation{
		StationRecord: domain.StationRecord{SiteID: name, SiteName: name, Latitude: &lat, Longitude: &lon},
	}
}

func testIndex() *StationIndex {
	return NewStationIndex([]domain.EnrichedStation{
		station("zhongshan", 25.062361, 121.526528),
		station("guting", 25.020608, 121.529556),
		station("xindian", 24.977222, 121.537778),
		station("keelung", 25.129167, 121.760056),
		station("hsinchu", 24.805619, 120.972075),
		station("qianjin", 22.632567, 120.288086),
		{StationRecord: domain.StationRecord{SiteName: "unlocated"}},
	})
}

func names(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Station.SiteName
	}
	return out
}

func TestNewStationIndex_SkipsUnlocated(t *testing.T) {
	assert.Equal(t, 6, testIndex().Len())
}

func TestNearest(t *testing.T) {
	ref := domain.TaipeiMainStation

	matches, err := testIndex().Nearest(ref.Latitude, ref.Longitude, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"zhongshan", "guting", "xindian"}, names(matches))
	for i := 1; i < len(matches); i++ {
		assert.LessOrEqual(t, matches[i-1].DistanceKm, matches[i].DistanceKm)
	}
	assert.InDelta(t, 1.88, matches[0].DistanceKm, 0.01)
}

func TestNearest_KLargerThanIndex(t *testing.T) {
	matches, err := testIndex().Nearest(25.0, 121.5, 50)
	require.NoError(t, err)
	assert.Len(t, matches, 6)
}

func TestWithinRadius(t *testing.T) {
	ref := domain.TaipeiMainStation

	tests := []struct {
		name     string
		radiusKm float64
		want     []string
	}{
		{"urban core", 10, []string{"zhongshan", "guting", "xindian"}},
		{"metro", 30, []string{"zhongshan", "guting", "xindian", "keelung"}},
		{"tiny", 0.5, []string{}},
		{"whole island", 400, []string{"zhongshan", "guting", "xindian", "keelung", "hsinchu", "qianjin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, err := testIndex().WithinRadius(ref.Latitude, ref.Longitude, tt.radiusKm)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(matches))
			for _, m := range matches {
				assert.LessOrEqual(t, m.DistanceKm, tt.radiusKm)
			}
		})
	}
}

func TestWithinRadius_AcrossAntimeridian(t *testing.T) {
	idx := NewStationIndex([]domain.EnrichedStation{
		station("east", 10, 179.9),
		station("west", 10, -179.95),
		station("far", 10, 170),
	})

	matches, err := idx.WithinRadius(10, -179.9, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"west", "east"}, names(matches))
	assert.InDelta(t, 21.9, matches[1].DistanceKm, 0.1)

	matches, err = idx.WithinRadius(10, 179.95, 50)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"east", "west"}, names(matches))
}

func TestWithinRadius_ReachingPole(t *testing.T) {
	idx := NewStationIndex([]domain.EnrichedStation{
		station("a", 89.5, 0),
		station("b", 89.5, 180),
	})

	matches, err := idx.WithinRadius(89.5, 0, 150)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names(matches))
}

func TestLonSpans(t *testing.T) {
	assert.Equal(t, [][2]float64{{120, 123}}, lonSpans(120, 123))
	assert.Equal(t, [][2]float64{{179, 180}, {-180, -178}}, lonSpans(179, 182))
	assert.Equal(t, [][2]float64{{178, 180}, {-180, -179}}, lonSpans(-182, -179))
	assert.Equal(t, [][2]float64{{-180, 180}}, lonSpans(-200, 200))
}

func TestInvalidQueries(t *testing.T) {
	idx := testIndex()

	_, err := idx.Nearest(91, 121, 3)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = idx.Nearest(25, 121, 0)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = idx.WithinRadius(25, 121, -1)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestEmptyIndex(t *testing.T) {
	idx := NewStationIndex(nil)

	matches, err := idx.Nearest(25, 121, 3)
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = idx.WithinRadius(25, 121, 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
