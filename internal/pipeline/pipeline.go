package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
)

// Extractor fetches one snapshot of raw station records.
type Extractor interface {
	Fetch(ctx context.Context) ([]domain.RawStationRecord, error)
}

// Analyzer turns raw records into an analysis.
type Analyzer interface {
	Analyze(raws []domain.RawStationRecord) (domain.Analysis, error)
}

// Loader writes a completed analysis to an output.
type Loader interface {
	Name() string
	Load(ctx context.Context, a domain.Analysis) error
}

// Pipeline runs the fetch-analyze-load sequence once per call and keeps the
// most recent successful analysis.
type Pipeline struct {
	extractor Extractor
	analyzer  Analyzer
	loaders   []Loader
	logger    *slog.Logger
	metrics   *observability.Metrics

	runMu  sync.Mutex
	ready  atomic.Bool
	latest atomic.Pointer[domain.Analysis]
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, a Analyzer, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor: e,
		analyzer:  a,
		loaders:   loaders,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once an analysis has completed, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no analysis has completed yet")
	}
	return nil
}

// Latest returns the most recent successful analysis.
func (p *Pipeline) Latest() (domain.Analysis, bool) {
	a := p.latest.Load()
	if a == nil {
		return domain.Analysis{}, false
	}
	return *a, true
}

// RunOnce fetches a snapshot, analyzes it, and hands the result to every
// loader. Runs are serialized. Loader failures do not stop the other loaders;
// they are joined into the returned error while the analysis is still kept.
func (p *Pipeline) RunOnce(ctx context.Context) (domain.Analysis, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	start := time.Now()

	raws, err := p.extractor.Fetch(ctx)
	if err != nil {
		p.metrics.RunsTotal.WithLabelValues("fetch_error").Inc()
		return domain.Analysis{}, fmt.Errorf("fetch snapshot: %w", err)
	}
	p.metrics.RecordsFetched.Add(float64(len(raws)))

	analysis, err := p.analyzer.Analyze(raws)
	if err != nil {
		p.metrics.RunsTotal.WithLabelValues("no_data").Inc()
		return domain.Analysis{}, fmt.Errorf("analyze snapshot: %w", err)
	}
	p.metrics.StationsLocated.Add(float64(analysis.Summary.Count))
	p.metrics.StationsSkipped.Add(float64(analysis.Summary.TotalStations - analysis.Summary.Count))

	p.latest.Store(&analysis)
	p.ready.Store(true)
	p.metrics.LastRunTimestamp.SetToCurrentTime()

	p.logger.Info("analysis complete",
		"records", len(raws),
		"located", analysis.Summary.Count,
		"skipped", analysis.Summary.TotalStations-analysis.Summary.Count,
	)

	loadErr := p.load(ctx, analysis)
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	if loadErr != nil {
		p.metrics.RunsTotal.WithLabelValues("load_error").Inc()
		return analysis, loadErr
	}
	p.metrics.RunsTotal.WithLabelValues("success").Inc()
	return analysis, nil
}

func (p *Pipeline) load(ctx context.Context, a domain.Analysis) error {
	var errs []error
	for _, l := range p.loaders {
		if err := l.Load(ctx, a); err != nil {
			p.logger.Error("load failed", "loader", l.Name(), "error", err)
			p.metrics.LoadErrors.WithLabelValues(l.Name()).Inc()
			errs = append(errs, fmt.Errorf("%s: %w", l.Name(), err))
			continue
		}
		p.metrics.StationsLoaded.WithLabelValues(l.Name()).Add(float64(len(a.Stations)))
	}
	return errors.Join(errs...)
}
