package commands

import (
	"context"
	"io"
	"log/slog"
	"sort"
)

// DefaultLogLevel is used when no -v flag is given.
const DefaultLogLevel = slog.LevelWarn

// SlogLogger adapts slog to the field-map logger used by the library packages.
type SlogLogger struct {
	logger *slog.Logger
}

// NewLogger creates a logger writing to w. verbosity follows the -v count:
// 0 warns, 1 adds info, 2 and more add debug.
func NewLogger(w io.Writer, verbosity int, jsonLogs bool) *SlogLogger {
	options := &slog.HandlerOptions{Level: levelFor(verbosity)}

	var handler slog.Handler
	if jsonLogs {
		handler = slog.NewJSONHandler(w, options)
	} else {
		handler = slog.NewTextHandler(w, options)
	}

	return &SlogLogger{logger: slog.New(handler)}
}

func levelFor(verbosity int) slog.Level {
	switch verbosity {
	case 0:
		return DefaultLogLevel
	case 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Slog returns the underlying logger.
func (l *SlogLogger) Slog() *slog.Logger {
	return l.logger
}

// Debug logs at debug level.
func (l *SlogLogger) Debug(msg string, fields map[string]interface{}) {
	l.log(slog.LevelDebug, msg, fields)
}

// Info logs at info level.
func (l *SlogLogger) Info(msg string, fields map[string]interface{}) {
	l.log(slog.LevelInfo, msg, fields)
}

// Warn logs at warn level.
func (l *SlogLogger) Warn(msg string, fields map[string]interface{}) {
	l.log(slog.LevelWarn, msg, fields)
}

// Error logs at error level.
func (l *SlogLogger) Error(msg string, fields map[string]interface{}) {
	l.log(slog.LevelError, msg, fields)
}

func (l *SlogLogger) log(level slog.Level, msg string, fields map[string]interface{}) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, key := range keys {
		attrs = append(attrs, slog.Any(key, fields[key]))
	}

	l.logger.LogAttrs(ctx, level, msg, attrs...)
}
