package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger(level string) (*zap.Logger, error) {
	return newConfig(level).Build()
}

// NewFileLogger writes JSON logs to path, creating parent directories.
func NewFileLogger(path, level string) (*zap.Logger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log dir %s: %w", dir, err)
		}
	}
	config := newConfig(level)
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path, "stderr"}
	return config.Build()
}

func newConfig(level string) zap.Config {
	config := zap.NewProductionConfig()

	// Parse level
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		l = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(l)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return config
}
