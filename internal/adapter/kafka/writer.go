package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/air-quality-etl/internal/config"
	"github.com/couchcryptid/air-quality-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes enriched stations to a Kafka topic, one message per station.
// It implements pipeline.Loader.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

func (w *Writer) Name() string { return "kafka" }

// Load serializes every located station of a and publishes them in a single
// WriteMessages call.
func (w *Writer) Load(ctx context.Context, a domain.Analysis) error {
	if len(a.Stations) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(a.Stations))
	for i := range a.Stations {
		msg, err := serializeToMessage(a.Stations[i], a.AnalyzedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish stations: %w", err)
	}
	w.logger.Info("stations published", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an EnrichedStation into a Kafka message keyed by
// site id, falling back to the site name.
func serializeToMessage(s domain.EnrichedStation, analyzedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize station: %w", err)
	}
	key := s.SiteID
	if key == "" {
		key = s.SiteName
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "distance_band", Value: []byte(s.DistanceBand)},
			{Key: "aqi_level", Value: []byte(s.AQILevel)},
			{Key: "analyzed_at", Value: []byte(analyzedAt.Format(time.RFC3339))},
		},
	}, nil
}
