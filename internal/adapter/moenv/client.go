package moenv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of a failed response is quoted in the error.
const maxErrorBody = 1 << 10

// Options configures a Client. The API key is passed in explicitly; the
// client never reads the environment.
type Options struct {
	BaseURL   string
	Dataset   string
	APIKey    string
	Limit     int // 0 fetches every record
	Timeout   time.Duration
	RateLimit float64 // requests per second
}

// Client fetches the latest air-quality snapshot from the MOENV open-data API.
// It implements pipeline.Extractor.
type Client struct {
	opts       Options
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a MOENV API client.
func NewClient(opts Options, logger *slog.Logger, metrics *observability.Metrics) *Client {
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	return &Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		metrics: metrics,
	}
}

// Fetch downloads one snapshot of raw station records.
func (c *Client) Fetch(ctx context.Context) ([]domain.RawStationRecord, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}

	start := time.Now()
	records, err := c.doRequest(ctx, c.requestURL())
	c.metrics.UpstreamDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues("error").Inc()
		return nil, err
	}
	c.metrics.UpstreamRequests.WithLabelValues("success").Inc()

	c.logger.Info("fetched air quality snapshot",
		"dataset", c.opts.Dataset,
		"records", len(records),
		"duration", time.Since(start),
	)
	return records, nil
}

func (c *Client) requestURL() string {
	params := url.Values{
		"api_key": {c.opts.APIKey},
		"format":  {"JSON"},
	}
	if c.opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(c.opts.Limit))
	}
	return fmt.Sprintf("%s/%s?%s", c.opts.BaseURL, url.PathEscape(c.opts.Dataset), params.Encode())
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]domain.RawStationRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("moenv request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("moenv API error: status %d: %s", resp.StatusCode, body)
	}

	records, err := DecodeRecords(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return records, nil
}

// DecodeRecords parses a MOENV response body. The API returns either a bare
// JSON array of records or an object wrapping them under "records". Numbers
// are kept as json.Number.
func DecodeRecords(r io.Reader) ([]domain.RawStationRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty response body")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	switch data[0] {
	case '[':
		var records []domain.RawStationRecord
		if err := dec.Decode(&records); err != nil {
			return nil, err
		}
		return records, nil
	case '{':
		var env envelope
		if err := dec.Decode(&env); err != nil {
			return nil, err
		}
		if env.Records == nil {
			return nil, errors.New("response object has no records field")
		}
		return *env.Records, nil
	default:
		return nil, fmt.Errorf("unexpected response starting with %q", data[0])
	}
}

// MOENV API response envelope.

type envelope struct {
	Records *[]domain.RawStationRecord `json:"records"`
}
