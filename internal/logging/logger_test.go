package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLoggerDefaultsToStderr(t *testing.T) {
	logger := NewLogger(nil)
	require.NotNil(t, logger)
	require.Equal(t, os.Stderr, logger.logger.Writer())
	require.Equal(t, LevelInfo, logger.level)
}

func TestLevelGating(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelWarn, Output: &buf})

	logger.Info("should not appear")
	require.Empty(t, buf.String())

	logger.Warn("should appear")
	require.Contains(t, buf.String(), "should appear")
}

func TestFormatArgs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf})

	logger.Debug("dispatched", "id", 7, "run_count", 1)

	out := buf.String()
	require.Contains(t, out, "dispatched")
	require.Contains(t, out, "id=7")
	require.Contains(t, out, "run_count=1")
}

func TestWithThreadTagsEveryMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&Config{Level: LevelDebug, Output: &buf})

	threadLogger := logger.WithThread(42)
	threadLogger.Info("yield")
	threadLogger.Debug("resumed")

	out := buf.String()
	require.Contains(t, out, "yield")
	require.Contains(t, out, "resumed")
	require.Equal(t, 2, bytesCount(out, "uthread_id=42"))
}

func bytesCount(s, substr string) int {
	n := 0
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			n++
			i += len(substr) - 1
		}
	}
	return n
}

func TestGlobalLoggerFunctions(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(NewLogger(&Config{Level: LevelDebug, Output: &buf}))
	defer SetDefault(NewLogger(nil))

	Debug("debug message")
	require.Contains(t, buf.String(), "debug message")

	buf.Reset()
	Info("info message")
	require.Contains(t, buf.String(), "info message")

	buf.Reset()
	Warn("warn message")
	require.Contains(t, buf.String(), "warn message")

	buf.Reset()
	Error("error message")
	require.Contains(t, buf.String(), "error message")
}
