package engine

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("kept", "k", "v")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "v", rec["k"])
	assert.Equal(t, "taskify", rec["component"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(LogConfig{}, &buf)
	require.NoError(t, err)

	log.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestNewLogger_UnknownFormat(t *testing.T) {
	_, err := NewLogger(LogConfig{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
