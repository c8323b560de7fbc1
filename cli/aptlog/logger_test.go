package aptlog

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFile(t *testing.T) {
	tmpDir := t.TempDir()
	fileName := filepath.Join(tmpDir, "aptrepo.log")
	var console bytes.Buffer

	logger := NewLogger(LoggerOpts{Filename: fileName, MaxSize: 1}, &console)
	entry := log.Logger{Handler: logger.handler, Level: log.InfoLevel}
	entry.WithField("leaf", "stable/main").Info("Test msg 1")
	entry.Debug("Test msg 2")
	require.NoError(t, logger.Close())

	assert.Contains(t, console.String(), "Test msg 1")
	content, err := os.ReadFile(fileName)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"message":"Test msg 1"`)
	assert.Contains(t, string(content), `"leaf":"stable/main"`)
	assert.NotContains(t, string(content), "Test msg 2")
}

func TestLoggerConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	logger := NewLogger(LoggerOpts{Verbose: true}, &console)
	assert.Nil(t, logger.ljLogger)

	entry := log.Logger{Handler: logger.handler, Level: log.DebugLevel}
	entry.Debug("debug message")

	assert.Contains(t, console.String(), "debug message")
	assert.NoError(t, logger.Close())
}
