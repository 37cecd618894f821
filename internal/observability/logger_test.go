package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/couchcryptid/air-quality-etl/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		level     string
		format    string
		enabled   slog.Level
		filtered  slog.Level
		hasFilter bool
	}{
		{level: "debug", format: "json", enabled: slog.LevelDebug},
		{level: "info", format: "text", enabled: slog.LevelInfo, filtered: slog.LevelDebug, hasFilter: true},
		{level: "warn", format: "json", enabled: slog.LevelWarn, filtered: slog.LevelInfo, hasFilter: true},
		{level: "", format: "", enabled: slog.LevelInfo, filtered: slog.LevelDebug, hasFilter: true},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger := NewLogger(&config.Config{LogLevel: tt.level, LogFormat: tt.format})

			assert.Same(t, logger, slog.Default(), "logger should become the slog default")
			assert.True(t, logger.Enabled(context.Background(), tt.enabled))
			if tt.hasFilter {
				assert.False(t, logger.Enabled(context.Background(), tt.filtered))
			}
		})
	}
}
