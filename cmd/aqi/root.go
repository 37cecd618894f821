package main

import (
	"fmt"
	"log/slog"

	"github.com/couchcryptid/air-quality-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/air-quality-etl/internal/adapter/geomap"
	kafkaadapter "github.com/couchcryptid/air-quality-etl/internal/adapter/kafka"
	"github.com/couchcryptid/air-quality-etl/internal/adapter/moenv"
	"github.com/couchcryptid/air-quality-etl/internal/config"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
	"github.com/couchcryptid/air-quality-etl/internal/observability"
	"github.com/couchcryptid/air-quality-etl/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "aqi",
	Short: "Taiwan air-quality station distance analysis",
	Long: `aqi pulls the current MOENV air-quality snapshot (dataset aqx_p_432),
computes each station's distance from Taipei Main Station, classifies stations
into distance bands and AQI categories, and reports summary statistics.

Configuration is read from the environment (and an optional .env file).`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger = observability.NewLogger(cfg)
		return nil
	},
}

// sinks holds the loaders built for a run plus any cleanup they need.
type sinks struct {
	loaders []pipeline.Loader
	kafka   *kafkaadapter.Writer
}

func (s sinks) close() {
	if s.kafka == nil {
		return
	}
	if err := s.kafka.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
}

// buildSinks assembles the file loaders under outDir and, when configured,
// the Kafka loader.
func buildSinks(outDir string, csv, geo bool) sinks {
	var s sinks
	if csv {
		s.loaders = append(s.loaders,
			csvfile.NewSnapshotWriter(outDir, logger),
			csvfile.NewWriter(outDir, logger),
		)
	}
	if geo {
		s.loaders = append(s.loaders, geomap.NewWriter(outDir, logger))
	}
	if cfg.KafkaEnabled() {
		s.kafka = kafkaadapter.NewWriter(cfg, logger)
		s.loaders = append(s.loaders, s.kafka)
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	}
	return s
}

// buildPipeline wires the MOENV extractor and the station analyzer to loaders.
func buildPipeline(loaders []pipeline.Loader, metrics *observability.Metrics) (*pipeline.Pipeline, error) {
	if err := cfg.ValidateUpstream(); err != nil {
		return nil, err
	}
	client := moenv.NewClient(moenv.Options{
		BaseURL:   cfg.MoenvBaseURL,
		Dataset:   cfg.MoenvDataset,
		APIKey:    cfg.MoenvAPIKey,
		Limit:     cfg.MoenvLimit,
		Timeout:   cfg.MoenvTimeout,
		RateLimit: cfg.MoenvRateLimit,
	}, logger, metrics)
	analyzer := pipeline.NewAnalyzer(domain.TaipeiMainStation, logger)
	return pipeline.New(client, analyzer, loaders, logger, metrics), nil
}
