// Package logger provides the structured slog logger for the service.
// Logs are written in JSON format to a size-rotated file.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// NewSystemLogger creates a JSON slog.Logger writing to <logDir>/system.log
// with size-based rotation. When stderr is set, log records are mirrored to
// standard error as well (useful for `serve` running in the foreground).
func NewSystemLogger(logDir string, level slog.Level, stderr bool) *slog.Logger {
	rotated := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "system.log"),
		MaxSize:    20, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}

	var w io.Writer = rotated
	if stderr {
		w = io.MultiWriter(rotated, os.Stderr)
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
