package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "info", "json")

	logger.Debug("hidden")
	logger.With("component", "applock").Info("locked", "reason", "manual")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "locked", rec["msg"])
	assert.Equal(t, "applock", rec["component"])
	assert.Equal(t, "manual", rec["reason"])
}

func TestColorLogger(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	logger := New(&buf, "debug", "text")

	logger.With("component", "applock").Warn("lockout started", "duration", "5m0s")
	logger.WithGroup("store").Debug("opened", "path", "/tmp/x.db")

	out := buf.String()
	assert.Contains(t, out, "WRN lockout started component=applock duration=5m0s")
	assert.Contains(t, out, "DBG opened store.path=/tmp/x.db")
}

func TestColorLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "error", "text")

	logger.Warn("ignored")
	assert.Empty(t, buf.String())

	logger.Error("boom")
	assert.Contains(t, buf.String(), "boom")
}
