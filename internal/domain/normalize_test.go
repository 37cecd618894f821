package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestParseOptionalFloat(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want *float64
	}{
		{"nil", nil, nil},
		{"empty string", "", nil},
		{"dash placeholder", "-", nil},
		{"padded dash", " - ", nil},
		{"non-numeric", "N/A", nil},
		{"numeric string", "42", ptr(42)},
		{"padded numeric", " 12.5 ", ptr(12.5)},
		{"zero string", "0", ptr(0)},
		{"negative", "-3.2", ptr(-3.2)},
		{"float64", 7.5, ptr(7.5)},
		{"int", 9, ptr(9)},
		{"json number", json.Number("101"), ptr(101)},
		{"bad json number", json.Number("x"), nil},
		{"NaN string", "NaN", nil},
		{"Inf string", "Inf", nil},
		{"bool", true, nil},
		{"slice", []any{"1"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseOptionalFloat(tt.in))
		})
	}
}

func TestParseCoordinate_ZeroIsMissing(t *testing.T) {
	assert.Nil(t, parseCoordinate("0"))
	assert.Nil(t, parseCoordinate(0.0))
	assert.Nil(t, parseCoordinate(""))
	assert.Equal(t, ptr(25.0478), parseCoordinate("25.0478"))
}

func TestStringField(t *testing.T) {
	assert.Equal(t, "中山", stringField("中山"))
	assert.Equal(t, "12", stringField(json.Number("12")))
	assert.Equal(t, "12.5", stringField(12.5))
	assert.Equal(t, "", stringField(nil))
	assert.Equal(t, "", stringField(map[string]any{}))
}

func TestParsePublishTime(t *testing.T) {
	want := time.Date(2024, 4, 26, 15, 0, 0, 0, taiwanZone)

	tests := []struct {
		name string
		in   any
		want *time.Time
	}{
		{"slash with seconds", "2024/04/26 15:00:00", &want},
		{"dash with seconds", "2024-04-26 15:00:00", &want},
		{"slash without seconds", "2024/04/26 15:00", &want},
		{"dash without seconds", "2024-04-26 15:00", &want},
		{"rfc3339", "2024-04-26T07:00:00Z", &want},
		{"garbage", "yesterday", nil},
		{"empty", "", nil},
		{"non-string", 20240426, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parsePublishTime(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %v want %v", got, tt.want)
		})
	}
}

func TestNormalizeRecord_AllFields(t *testing.T) {
	raw := RawStationRecord{
		"siteid":      "12",
		"sitename":    "中山",
		"county":      "臺北市",
		"aqi":         "42",
		"pm2.5":       "11",
		"pm10":        "25",
		"o3":          "31.2",
		"co":          "0.35",
		"no2":         "14.1",
		"so2":         "1.8",
		"status":      "良好",
		"pollutant":   "",
		"latitude":    "25.062361",
		"longitude":   "121.526528",
		"publishtime": "2024/04/26 15:00:00",
		"wind_speed":  "2.3",
		"wind_direc":  "65",
	}

	s := NormalizeRecord(raw)

	assert.Equal(t, "12", s.SiteID)
	assert.Equal(t, "中山", s.SiteName)
	assert.Equal(t, "臺北市", s.County)
	assert.Equal(t, "良好", s.Status)
	assert.Empty(t, s.Pollutant)
	assert.Equal(t, ptr(42), s.AQI)
	assert.Equal(t, ptr(11), s.PM25)
	assert.Equal(t, ptr(25), s.PM10)
	assert.Equal(t, ptr(31.2), s.O3)
	assert.Equal(t, ptr(0.35), s.CO)
	assert.Equal(t, ptr(14.1), s.NO2)
	assert.Equal(t, ptr(1.8), s.SO2)
	assert.Equal(t, ptr(25.062361), s.Latitude)
	assert.Equal(t, ptr(121.526528), s.Longitude)
	assert.Equal(t, ptr(2.3), s.WindSpeed)
	assert.Equal(t, ptr(65), s.WindDirection)
	require.NotNil(t, s.PublishTime)
	assert.True(t, s.HasCoordinates())
}

func TestNormalizeRecord_MissingValues(t *testing.T) {
	s := NormalizeRecord(RawStationRecord{
		"sitename":  "X",
		"aqi":       "-",
		"pm2.5":     "",
		"latitude":  "0",
		"longitude": "121.5",
	})

	assert.Nil(t, s.AQI)
	assert.Nil(t, s.PM25)
	assert.Nil(t, s.PM10)
	assert.Nil(t, s.Latitude)
	assert.Equal(t, ptr(121.5), s.Longitude)
	assert.Nil(t, s.PublishTime)
	assert.False(t, s.HasCoordinates())
}

func TestNormalizeRecord_ZeroAQIIsAReading(t *testing.T) {
	s := NormalizeRecord(RawStationRecord{"aqi": "0"})
	require.NotNil(t, s.AQI)
	assert.Equal(t, 0.0, *s.AQI)
}

func TestNormalizeRecord_EmptyInput(t *testing.T) {
	s := NormalizeRecord(RawStationRecord{})
	assert.Equal(t, StationRecord{}, s)
}

func TestNormalizeRecords_SortedByCountyThenName(t *testing.T) {
	raws := []RawStationRecord{
		{"county": "B", "sitename": "b"},
		{"county": "A", "sitename": "z"},
		{"county": "A", "sitename": "a"},
		{"county": "B", "sitename": "a"},
	}

	got := NormalizeRecords(raws)

	require.Len(t, got, 4)
	names := make([]string, len(got))
	for i, s := range got {
		names[i] = s.County + "/" + s.SiteName
	}
	assert.Equal(t, []string{"A/a", "A/z", "B/a", "B/b"}, names)
}

func TestNormalizeRecords_OneOutputPerInput(t *testing.T) {
	raws := []RawStationRecord{{}, {"aqi": "bad"}, {"sitename": "x"}}
	assert.Len(t, NormalizeRecords(raws), 3)
	assert.Empty(t, NormalizeRecords(nil))
}
