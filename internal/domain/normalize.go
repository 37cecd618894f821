package domain

import (
	"cmp"
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// taiwanZone is the offset the upstream publish times are written in.
var taiwanZone = time.FixedZone("CST", 8*60*60)

// publishTimeLayouts are tried in order; the first successful parse wins.
var publishTimeLayouts = []string{
	"2006/01/02 15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04",
	"2006-01-02 15:04",
}

// NormalizeRecords converts raw upstream records into typed station records,
// one per input, sorted by county then site name. It never fails: malformed
// values become missing fields.
func NormalizeRecords(raws []RawStationRecord) []StationRecord {
	out := make([]StationRecord, 0, len(raws))
	for _, raw := range raws {
		out = append(out, NormalizeRecord(raw))
	}
	slices.SortStableFunc(out, func(a, b StationRecord) int {
		return cmp.Or(
			strings.Compare(a.County, b.County),
			strings.Compare(a.SiteName, b.SiteName),
		)
	})
	return out
}

// NormalizeRecord converts a single raw record.
func NormalizeRecord(raw RawStationRecord) StationRecord {
	return StationRecord{
		SiteID:        stringField(raw[keySiteID]),
		SiteName:      stringField(raw[keySiteName]),
		County:        stringField(raw[keyCounty]),
		Status:        stringField(raw[keyStatus]),
		Pollutant:     stringField(raw[keyPollutant]),
		AQI:           parseOptionalFloat(raw[keyAQI]),
		PM25:          parseOptionalFloat(raw[keyPM25]),
		PM10:          parseOptionalFloat(raw[keyPM10]),
		O3:            parseOptionalFloat(raw[keyO3]),
		CO:            parseOptionalFloat(raw[keyCO]),
		NO2:           parseOptionalFloat(raw[keyNO2]),
		SO2:           parseOptionalFloat(raw[keySO2]),
		Latitude:      parseCoordinate(raw[keyLatitude]),
		Longitude:     parseCoordinate(raw[keyLongitude]),
		WindSpeed:     parseOptionalFloat(raw[keyWindSpeed]),
		WindDirection: parseOptionalFloat(raw[keyWindDirection]),
		PublishTime:   parsePublishTime(raw[keyPublishTime]),
	}
}

// parseOptionalFloat returns nil for missing, empty, "-", non-numeric, and
// non-finite values.
func parseOptionalFloat(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		s := strings.TrimSpace(x)
		if s == "" || s == "-" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// parseCoordinate is parseOptionalFloat with zero treated as missing; the
// upstream uses 0 as a placeholder for unknown station positions.
func parseCoordinate(v any) *float64 {
	f := parseOptionalFloat(v)
	if f == nil || *f == 0 {
		return nil
	}
	return f
}

func stringField(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}

func parsePublishTime(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range publishTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, taiwanZone); err == nil {
			return &t
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	return nil
}
