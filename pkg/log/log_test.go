package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeLines parses newline-delimited JSON log output.
func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DebugLevel,
		"info":    InfoLevel,
		"warn":    WarnLevel,
		"error":   ErrorLevel,
		"verbose": InfoLevel,
		"":        InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestInit_JSONOutput(t *testing.T) {
	original := Logger
	defer func() {
		Logger = original
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}()

	var buf bytes.Buffer
	Init(Config{Level: WarnLevel, JSONOutput: true, Output: &buf})

	Info("hidden")
	Warn("shown")
	logger := WithComponent("events")
	logger.Warn().Msg("component")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "shown", lines[0]["message"])
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "events", lines[1]["component"])
}

func TestInit_ConsoleOutput(t *testing.T) {
	original := Logger
	defer func() {
		Logger = original
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	}()

	var buf bytes.Buffer
	Init(Config{Level: DebugLevel, Output: &buf})
	logger := WithModule("auth")
	logger.Debug().Msg("loaded")

	assert.Contains(t, buf.String(), "loaded")
	assert.Contains(t, buf.String(), "auth")
}
