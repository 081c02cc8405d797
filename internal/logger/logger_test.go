package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer

	l := initWith(&buf, "production")
	l.Info("order completed", "order_id", "ORD-ABC")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "order completed", entry["msg"])
	assert.Equal(t, "ORD-ABC", entry["order_id"])
	assert.False(t, l.Enabled(t.Context(), slog.LevelDebug))
}

func TestInit_DevelopmentEnablesDebug(t *testing.T) {
	var buf bytes.Buffer

	l := initWith(&buf, "development")
	l.Debug("probe")

	assert.Contains(t, buf.String(), "msg=probe")
	assert.True(t, l.Enabled(t.Context(), slog.LevelDebug))
}
