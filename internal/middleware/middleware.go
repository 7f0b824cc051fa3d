// Package middleware holds the HTTP middleware chain shared by all
// routes: request logging, CORS and default content type.
package middleware

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/j8kin/fantasy-empires-wars/internal/logger"
)

// Logger tags each request with a random ID, logs method/path/status
// and duration, and at debug level also the request and response
// bodies. Bodies are only buffered when debug logging is enabled.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := logger.NewRequestID()
		r = r.WithContext(logger.WithRequestID(r.Context(), requestID))

		reqLog := logger.Get().With().
			Str("requestId", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Logger()

		debug := logger.DebugEnabled()
		if debug && r.Body != nil {
			if body, err := io.ReadAll(r.Body); err == nil && len(body) > 0 {
				logger.DebugBody(reqLog, "request_body", body)
				r.Body = io.NopCloser(bytes.NewReader(body))
			}
		}

		reqLog.Info().Str("query", r.URL.RawQuery).Msg("Request received")

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		if debug {
			rw.buf = &bytes.Buffer{}
		}
		next.ServeHTTP(rw, r)

		if debug {
			logger.DebugBody(reqLog, "response_body", rw.buf.Bytes())
		}
		reqLog.Info().
			Int("status", rw.status).
			Int64("bytes", rw.written).
			Dur("durationMs", time.Since(start)).
			Msg("Request completed")
	})
}

// CORS answers preflight requests and stamps the allow headers on
// everything else.
func CORS(allowedOrigins string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowedOrigins)
			h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// JSON defaults the Content-Type to application/json; handlers that
// write something else override it before the first Write.
func JSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// Chain wraps h so the first middleware listed is the outermost.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// responseWriter records status and byte count, and optionally mirrors
// the body into buf for debug logging.
type responseWriter struct {
	http.ResponseWriter
	buf     *bytes.Buffer
	status  int
	written int64
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.buf != nil {
		w.buf.Write(b)
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets WebSocket upgrades pass through the logging wrapper.
func (w *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hj, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hj.Hijack()
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not implement http.Hijacker")
}
