package export

import (
	"context"
	"fmt"
	"log/slog"

	errorslib "github.com/goliatone/go-errors"
)

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}

// SlogLogger adapts a *slog.Logger to Logger.
type SlogLogger struct {
	Logger *slog.Logger
}

// NewSlogLogger wraps logger, falling back to slog.Default.
func NewSlogLogger(logger *slog.Logger) SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return SlogLogger{Logger: logger}
}

func (l SlogLogger) Debugf(format string, args ...any) {
	l.log(slog.LevelDebug, format, args...)
}

func (l SlogLogger) Infof(format string, args ...any) {
	l.log(slog.LevelInfo, format, args...)
}

func (l SlogLogger) Errorf(format string, args ...any) {
	l.log(slog.LevelError, format, args...)
}

// LogError logs err with its go-errors attributes (category, text code, severity).
func (l SlogLogger) LogError(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}
	logger := l.logger()
	mapped := AsGoError(err)
	attrs := errorslib.ToSlogAttributes(mapped)
	attrs = append(attrs, slog.String("error", err.Error()))
	logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (l SlogLogger) log(level slog.Level, format string, args ...any) {
	logger := l.logger()
	if !logger.Enabled(context.Background(), level) {
		return
	}
	logger.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

func (l SlogLogger) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

type errorLogger interface {
	LogError(ctx context.Context, msg string, err error)
}
