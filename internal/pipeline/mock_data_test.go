package pipeline_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/air-quality-etl/internal/adapter/moenv"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotPath = "../../data/mock/aqx_p_432_snapshot.json"

func readSnapshot(t *testing.T) []domain.RawStationRecord {
	t.Helper()
	f, err := os.Open(filepath.Clean(snapshotPath))
	require.NoError(t, err)
	defer f.Close()

	records, err := moenv.DecodeRecords(f)
	require.NoError(t, err)
	return records
}

func TestStationAnalyzer_WithMockSnapshot(t *testing.T) {
	raws := readSnapshot(t)
	require.Len(t, raws, 15)

	a, err := pipeline.NewAnalyzer(domain.TaipeiMainStation, discardLogger()).Analyze(raws)
	require.NoError(t, err)

	s := a.Summary
	assert.Equal(t, 15, s.TotalStations)
	assert.Len(t, a.Records, 15, "every normalized record is kept, located or not")
	assert.Equal(t, 13, s.Count)
	assert.Len(t, a.Stations, 13)

	assert.Equal(t, map[domain.DistanceBand]int{
		domain.BandUrbanCore:      3,
		domain.BandMetroRegion:    4,
		domain.BandNorthernRegion: 1,
		domain.BandCentralRegion:  2,
		domain.BandSouthernRegion: 3,
	}, s.DistanceBands)

	assert.Equal(t, map[domain.AQILevel]int{
		domain.LevelGood:      4,
		domain.LevelModerate:  5,
		domain.LevelUnhealthy: 3,
		domain.LevelNoData:    1,
	}, s.AQILevels)

	assert.Equal(t, map[domain.AQICategory]int{
		domain.CategoryGood:               5,
		domain.CategoryModerate:           5,
		domain.CategoryUnhealthySensitive: 2,
		domain.CategoryUnhealthyAll:       1,
	}, s.AQICategories)

	// AQI covers every normalized record, including the unlocated station.
	assert.Equal(t, 13, s.AQI.Count)
	assert.InDelta(t, 68.3846, s.AQI.Mean, 1e-3)
	assert.InDelta(t, 56, s.AQI.Median, 1e-9)
	assert.InDelta(t, 40.074, s.AQI.StdDev, 1e-3)
	assert.InDelta(t, 20, s.AQI.Min, 1e-9)
	assert.InDelta(t, 158, s.AQI.Max, 1e-9)

	require.NotNil(t, s.Nearest)
	require.NotNil(t, s.Farthest)
	assert.Equal(t, "中山", s.Nearest.SiteName)
	assert.InDelta(t, 1.88, s.Nearest.DistanceKm, 0.01)
	assert.Equal(t, "恆春", s.Farthest.SiteName)
	assert.InDelta(t, 351.49, s.Farthest.DistanceKm, 0.01)

	assert.Equal(t, s.Nearest.SiteName, a.Stations[0].SiteName)
	assert.Equal(t, s.Farthest.SiteName, a.Stations[len(a.Stations)-1].SiteName)

	for _, st := range a.Stations {
		assert.NotEqual(t, "富貴角", st.SiteName, "station without coordinates must not be located")
		assert.NotEqual(t, "測試站", st.SiteName, "zero coordinates must not be located")
		require.NotNil(t, st.PublishTime)
	}
}
