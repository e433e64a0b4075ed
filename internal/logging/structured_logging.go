package logging

import (
	"context"
	"io"
	"log/slog"
)

type loggerKey struct{}

// NewStructuredLogger returns a JSON logger writing to w at level.
func NewStructuredLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// LevelFor maps the -verbose flag to a level.
func LevelFor(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func emit(logger *slog.Logger, level slog.Level, msg string, attrs []slog.Attr) {
	if logger == nil {
		return
	}
	logger.LogAttrs(context.Background(), level, msg, attrs...)
}

func withError(err error, attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs)+1)
	if err != nil {
		out = append(out, slog.String("error", err.Error()))
	}
	return append(out, attrs...)
}

// LogError logs err at error level.
func LogError(logger *slog.Logger, message string, err error, attrs ...slog.Attr) {
	emit(logger, slog.LevelError, message, withError(err, attrs))
}

// LogWarning logs a recoverable failure, such as a retried feed download.
func LogWarning(logger *slog.Logger, message string, err error, attrs ...slog.Attr) {
	emit(logger, slog.LevelWarn, message, withError(err, attrs))
}

// LogOperation logs a completed operation at info level. A zero "duration"
// attribute is left out.
func LogOperation(logger *slog.Logger, operation string, attrs ...slog.Attr) {
	kept := attrs[:0:0]
	for _, attr := range attrs {
		if attr.Key == "duration" && attr.Value.Kind() == slog.KindDuration && attr.Value.Duration() == 0 {
			continue
		}
		kept = append(kept, attr)
	}
	emit(logger, slog.LevelInfo, operation, kept)
}

// LogHTTPRequest writes the access log line for one request.
func LogHTTPRequest(logger *slog.Logger, method, path string, status int, durationMs float64, attrs ...slog.Attr) {
	line := append([]slog.Attr{
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("duration_ms", durationMs),
	}, attrs...)
	emit(logger, slog.LevelInfo, "http_request", line)
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the request logger, or slog.Default when none is set.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
