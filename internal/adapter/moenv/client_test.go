package moenv

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAPIKey  = "test-key"
	testDataset = "aqx_p_432"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(baseURL string, limit int) *Client {
	return NewClient(Options{
		BaseURL: baseURL,
		Dataset: testDataset,
		APIKey:  testAPIKey,
		Limit:   limit,
		Timeout: 5 * time.Second,
	}, discardLogger(), observability.NewMetricsForTesting())
}

func TestFetch_ArrayResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+testDataset, r.URL.Path)
		assert.Equal(t, testAPIKey, r.URL.Query().Get("api_key"))
		assert.Equal(t, "JSON", r.URL.Query().Get("format"))
		assert.Empty(t, r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"sitename":"中山","aqi":"42","latitude":"25.062361"},{"sitename":"前金","aqi":"-"}]`)) //nolint:errcheck
	}))
	defer srv.Close()

	records, err := newTestClient(srv.URL, 0).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "中山", records[0]["sitename"])
	assert.Equal(t, "42", records[0]["aqi"])
	assert.Equal(t, "-", records[1]["aqi"])
}

func TestFetch_RecordsEnvelopeAndLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"total":"1","records":[{"sitename":"A","aqi":37}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	records, err := newTestClient(srv.URL, 10).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, json.Number("37"), records[0]["aqi"])
}

func TestFetch_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`invalid api_key`)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 0).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
	assert.Contains(t, err.Error(), "invalid api_key")
}

func TestFetch_Non200TruncatesLargeBody(t *testing.T) {
	page := strings.Repeat("x", 64<<10)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(page)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 0).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Less(t, len(err.Error()), maxErrorBody+200)
}

func TestFetch_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"sitename":`)) //nolint:errcheck
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 0).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestFetch_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`)) //nolint:errcheck
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(srv.URL, 0).Fetch(ctx)
	require.Error(t, err)
}

func TestDecodeRecords(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr string
	}{
		{"array", `[{"a":"1"},{"a":"2"}]`, 2, ""},
		{"empty array", `[]`, 0, ""},
		{"envelope", `{"records":[{"a":"1"}]}`, 1, ""},
		{"leading whitespace", "\n  [{}]", 1, ""},
		{"envelope without records", `{"error":"quota"}`, 0, "no records field"},
		{"empty body", ``, 0, "empty response body"},
		{"scalar", `"oops"`, 0, "unexpected response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRecords(strings.NewReader(tt.body))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestDecodeRecords_FeedsNormalizer(t *testing.T) {
	records, err := DecodeRecords(strings.NewReader(`[{"sitename":"A","aqi":55,"latitude":25.1,"longitude":121.4}]`))
	require.NoError(t, err)

	s := domain.NormalizeRecord(records[0])
	require.NotNil(t, s.AQI)
	assert.Equal(t, 55.0, *s.AQI)
	assert.True(t, s.HasCoordinates())
}
