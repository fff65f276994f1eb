package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Run("Should map known names and fall back to info", func(t *testing.T) {
		assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
		assert.Equal(t, WarnLevel, ParseLevel("warning"))
		assert.Equal(t, ErrorLevel, ParseLevel(" error "))
		assert.Equal(t, DisabledLevel, ParseLevel("off"))
		assert.Equal(t, InfoLevel, ParseLevel("chatty"))
	})
}

func TestLogLevel_ToCharmlogLevel(t *testing.T) {
	t.Run("Should convert all log levels to charm log levels correctly", func(t *testing.T) {
		testCases := []struct {
			level    LogLevel
			expected int
		}{
			{DebugLevel, -4},
			{InfoLevel, 0},
			{WarnLevel, 4},
			{ErrorLevel, 8},
			{DisabledLevel, 1000},
			{LogLevel("unknown"), 0},
		}
		for _, tc := range testCases {
			assert.Equal(t, tc.expected, int(tc.level.ToCharmlogLevel()), "level %s", tc.level)
		}
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("Should write text output with key values", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: InfoLevel, Output: &buf})
		l.Info("rows loaded", "rows", 3)
		l.Debug("hidden")
		out := buf.String()
		assert.Contains(t, out, "rows loaded")
		assert.Contains(t, out, "rows=3")
		assert.NotContains(t, out, "hidden")
	})

	t.Run("Should write JSON lines when configured", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: DebugLevel, Output: &buf, JSON: true})
		l.With("stage", "outliers").Warn("high removal", "pct", 25.5)
		line := strings.TrimSpace(buf.String())
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		assert.Equal(t, "high removal", m["msg"])
		assert.Equal(t, "outliers", m["stage"])
	})

	t.Run("Should silence everything at disabled level", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(&Config{Level: DisabledLevel, Output: &buf})
		l.Error("nope")
		assert.Empty(t, buf.String())
	})
}

func TestOrNop(t *testing.T) {
	t.Run("Should never return nil", func(t *testing.T) {
		l := OrNop(nil)
		require.NotNil(t, l)
		l.With("k", "v").Info("discarded")
	})
}
