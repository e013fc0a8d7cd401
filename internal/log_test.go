package internal

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevFlags := log.Writer(), log.Flags()
	log.SetOutput(&buf)
	log.SetFlags(0)
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return &buf
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"ERROR":   LogLevelError,
		"warn":    LogLevelWarn,
		" Debug ": LogLevelDebug,
		"INFO":    LogLevelInfo,
		"":        LogLevelInfo,
		"verbose": LogLevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "info")
	buf := captureLog(t)
	logger := NewLogger("Cache")

	logger.Debugf("hit %s", "k")
	logger.Infof("stored %d", 1)
	logger.Errorf("failed")

	assert.Equal(t, "[Cache] stored 1\n[Cache] ERROR - failed\n", buf.String())
}

func TestLoggerFromEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	buf := captureLog(t)

	NewLogger("Session").Debugf("swept %d", 2)
	assert.Equal(t, "[Session] swept 2\n", buf.String())
}
