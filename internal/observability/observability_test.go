package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" DEBUG ", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "info", "json")

	logger.Debug("hidden")
	logger.Info("render complete", "points", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "render complete", entry["msg"])
	assert.Equal(t, "search-layer-map", entry["service"])
	assert.InDelta(t, 3, entry["points"], 0)
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "debug", "TEXT")

	logger.Debug("classified", "rows", 2)

	assert.Contains(t, buf.String(), "msg=classified")
	assert.Contains(t, buf.String(), "rows=2")
}

func TestNewMetricsForTesting_Unregistered(t *testing.T) {
	m1 := NewMetricsForTesting()
	m2 := NewMetricsForTesting()

	m1.Renders.Inc()
	m1.RenderFailures.WithLabelValues("no_valid_rows").Add(2)
	m1.LayerPoints.WithLabelValues("highway").Set(4)

	assert.InDelta(t, 1, testutil.ToFloat64(m1.Renders), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m2.Renders), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m1.RenderFailures.WithLabelValues("no_valid_rows")), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(m1.LayerPoints.WithLabelValues("highway")), 0)

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(m1.Renders))
}
