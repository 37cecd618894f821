package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// MOENV open-data API.
	MoenvAPIKey    string
	MoenvBaseURL   string
	MoenvDataset   string
	MoenvLimit     int
	MoenvTimeout   time.Duration
	MoenvRateLimit float64

	OutputDir       string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka sink; disabled when KafkaBrokers is empty.
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first if present; it never
// overrides variables already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	moenvTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("MOENV_TIMEOUT", "30s"))
	if err != nil || moenvTimeout <= 0 {
		return nil, errors.New("invalid MOENV_TIMEOUT")
	}

	moenvLimit, err := strconv.Atoi(sharedcfg.EnvOrDefault("MOENV_LIMIT", "0"))
	if err != nil || moenvLimit < 0 {
		return nil, errors.New("invalid MOENV_LIMIT: must be a non-negative integer")
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("MOENV_RATE_LIMIT", "1"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid MOENV_RATE_LIMIT: must be a positive number of requests per second")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		MoenvAPIKey:    os.Getenv("MOENV_API_KEY"),
		MoenvBaseURL:   sharedcfg.EnvOrDefault("MOENV_BASE_URL", "https://data.moenv.gov.tw/api/v2"),
		MoenvDataset:   sharedcfg.EnvOrDefault("MOENV_DATASET", "aqx_p_432"),
		MoenvLimit:     moenvLimit,
		MoenvTimeout:   moenvTimeout,
		MoenvRateLimit: rateLimit,

		OutputDir:       sharedcfg.EnvOrDefault("OUTPUT_DIR", "outputs"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaBrokers:   brokers,
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "air-quality-stations"),
	}

	if cfg.MoenvDataset == "" {
		return nil, errors.New("MOENV_DATASET is required")
	}
	if cfg.KafkaEnabled() && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether the Kafka sink is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// ValidateUpstream checks the settings needed to call the MOENV API.
func (c *Config) ValidateUpstream() error {
	if c.MoenvAPIKey == "" {
		return errors.New("MOENV_API_KEY is required to fetch live data")
	}
	return nil
}
