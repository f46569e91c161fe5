package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/argyll/editor/pkg/log"
)

func TestNewUsesInfoLevel(t *testing.T) {
	logger := log.New("svc", "dev", "1.0.0")
	ctx := context.Background()

	assert.False(t, logger.Handler().Enabled(ctx, slog.LevelDebug))
	assert.True(t, logger.Handler().Enabled(ctx, slog.LevelInfo))
}

func TestNewWithWriterOutputsBaseAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithWriter(
		&buf, "svc-name", "prod", "2.3.4", slog.LevelDebug,
	)
	logger.Info("hello", slog.Int("count", 1))

	var got map[string]any
	assert.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got))

	assert.Equal(t, "svc-name", got["service"])
	assert.Equal(t, "prod", got["env"])
	assert.Equal(t, "2.3.4", got["version"])
	assert.Equal(t, float64(1), got["count"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, log.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, log.ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, log.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, log.ParseLevel("info"))
	assert.Equal(t, slog.LevelInfo, log.ParseLevel("bogus"))
}
