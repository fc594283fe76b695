package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jongwoncode/Online-Profitable-RL-TradingBot/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Level(t *testing.T) {
	log, err := logger.NewLogger("debug")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = logger.NewLogger("not-a-level")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestNewFileLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "episodes.log")

	log, err := logger.NewFileLogger(path, "info")
	require.NoError(t, err)
	log.Info("Episode finished")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Episode finished")
}
