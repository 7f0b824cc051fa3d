// Package logger configures the global zerolog logger and carries
// request IDs through contexts.
package logger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const requestIDKey contextKey = "request_id"

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// Init sets up the global logger. LOG_LEVEL selects the level (default
// info), LOG_FILE tees output to a file, and color is enabled only in
// dev mode so production logs stay grep-friendly.
func Init() {
	zerolog.TimeFieldFormat = timeFormat
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }

	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var output io.Writer = zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: timeFormat,
		NoColor:    !devMode(),
	}
	if path := os.Getenv("LOG_FILE"); path != "" {
		if f, ferr := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); ferr == nil {
			output = io.MultiWriter(output, f)
		}
	}

	log.Logger = log.Output(output).With().Caller().Logger()
	log.Info().Str("level", level.String()).Bool("dev", devMode()).Msg("Logger initialized")
}

func devMode() bool {
	return os.Getenv("DEV_MODE") == "true"
}

// Get returns the global logger.
func Get() zerolog.Logger {
	return log.Logger
}

// DebugEnabled reports whether debug logging is on; callers use it to
// skip the cost of capturing bodies nobody will see.
func DebugEnabled() bool {
	return zerolog.GlobalLevel() <= zerolog.DebugLevel
}

// NewRequestID returns a random 12-hex-char ID for correlating the log
// lines of one request.
func NewRequestID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req%09d", time.Now().UnixNano()%1e9)
	}
	return hex.EncodeToString(b)
}

// WithRequestID stores the request ID on the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID, or "" outside a request.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// ForRequest returns the global logger tagged with the context's
// request ID when present.
func ForRequest(ctx context.Context) zerolog.Logger {
	id := RequestIDFromContext(ctx)
	if id == "" {
		return log.Logger
	}
	return log.Logger.With().Str("requestId", id).Logger()
}

const bodyLogLimit = 2048

// DebugBody logs an HTTP body at debug level under the given field
// name, truncated to keep log lines bounded.
func DebugBody(l zerolog.Logger, field string, body []byte) {
	if len(body) == 0 {
		return
	}
	if len(body) > bodyLogLimit {
		l.Debug().Str(field, string(body[:bodyLogLimit])).Bool("truncated", true).Msg("HTTP body")
		return
	}
	l.Debug().Str(field, string(body)).Msg("HTTP body")
}
