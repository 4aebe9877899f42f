package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNew_JSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput(Config{Level: "debug", Format: "json"}, &buf)

	log.WithComponent("resolver").Info().Str("query", "toradora").Msg("resolved")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "resolver", entry["component"])
	assert.Equal(t, "toradora", entry["query"])
	assert.Equal(t, "resolved", entry["message"])
}

func TestNew_FileOutput(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	log := NewWithOutput(Config{Level: "info", Format: "json", Path: dir}, &buf)
	log.Info().Msg("hello")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(filepath.Join(dir, "mona.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
