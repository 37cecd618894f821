package report

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAnalysis(t *testing.T) domain.Analysis {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, 4, 26, 7, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	raws := []domain.RawStationRecord{
		{"siteid": "1", "sitename": "A", "county": "臺北市", "aqi": "42", "latitude": "25.0330", "longitude": "121.5654"},
		{"siteid": "2", "sitename": "B", "county": "高雄市", "aqi": "", "latitude": "22.6273", "longitude": "120.3014"},
	}
	a, err := domain.Analyze(raws, domain.TaipeiMainStation, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return a
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testAnalysis(t)))
	out := buf.String()

	assert.Contains(t, out, "Reference: Taipei Main Station (25.0478, 121.5170)")
	assert.Contains(t, out, "Analyzed:  2024-04-26T07:00:00Z")
	assert.Contains(t, out, "Stations:  2 total, 2 located")
	assert.Contains(t, out, "Nearest:   A (臺北市) 5.15 km")
	assert.Contains(t, out, "Farthest:  B (高雄市) 296.18 km")
	assert.Contains(t, out, "AQI:       1 reporting")
	assert.Contains(t, out, "urban-core")
	assert.Contains(t, out, "southern-region")
	assert.NotContains(t, out, "metro-region")
	assert.Contains(t, out, "Nearest 2 stations")

	// The station without AQI is shown with a placeholder, not zero.
	lines := strings.Split(out, "\n")
	var bLine string
	for _, l := range lines {
		if strings.Contains(l, "高雄市") && strings.Contains(l, "southern-region") {
			bLine = l
		}
	}
	require.NotEmpty(t, bLine)
	assert.Contains(t, bLine, " - ")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestWrite_PropagatesWriteError(t *testing.T) {
	err := Write(failingWriter{}, testAnalysis(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed pipe")
}

func TestFormatAQI(t *testing.T) {
	v := 42.0
	assert.Equal(t, "42", formatAQI(&v))
	assert.Equal(t, "-", formatAQI(nil))
}
