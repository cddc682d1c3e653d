// Package logging writes structured logs to a file under ~/.valet/logs so
// the terminal stays free for the interactive UI.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New opens (or creates) ~/.valet/logs/valet.log and returns a JSON logger
// writing to it. Callers derive per-component loggers with Named().
func New(configDir string) (*zap.Logger, error) {
	logDir := filepath.Join(configDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log dir: %w", err)
	}

	path := filepath.Join(logDir, "valet.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encCfg),
		zapcore.AddSync(f),
		zap.InfoLevel,
	)
	return zap.New(core), nil
}

// Nop returns a logger that discards everything. Used in tests and as a
// fallback when the log file cannot be opened.
func Nop() *zap.Logger {
	return zap.NewNop()
}
