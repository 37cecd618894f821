package pipeline

import (
	"log/slog"

	"github.com/couchcryptid/air-quality-etl/internal/domain"
)

// StationAnalyzer implements Analyzer using the domain analysis against a
// fixed reference point.
type StationAnalyzer struct {
	ref    domain.ReferencePoint
	logger *slog.Logger
}

// NewAnalyzer creates a StationAnalyzer measuring distances from ref.
func NewAnalyzer(ref domain.ReferencePoint, logger *slog.Logger) *StationAnalyzer {
	return &StationAnalyzer{
		ref:    ref,
		logger: logger,
	}
}

func (a *StationAnalyzer) Analyze(raws []domain.RawStationRecord) (domain.Analysis, error) {
	return domain.Analyze(raws, a.ref, a.logger)
}
