package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"pharmadesk/m/internal/config"
)

func TestNewStdout(t *testing.T) {
	log, err := New(config.LoggerConfig{Level: "debug", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "app.log")
	log, err := New(config.LoggerConfig{Level: "warn", Format: "json", Output: "file", FilePath: path, MaxSize: 1})
	require.NoError(t, err)

	log.Warn("low stock")
	_ = log.Sync()

	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, zapcore.InfoLevel, level("chatty"))
	assert.Equal(t, zapcore.ErrorLevel, level("error"))
}
