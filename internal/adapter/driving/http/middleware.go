package httphandler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	unauthorizedMessage = "Unauthorized request"

	corsAllowMethods = "GET"
	corsAllowHeaders = "Authorization, Content-Type"
)

// MiddlewareOptions configures the middleware chain applied around the API mux.
type MiddlewareOptions struct {
	// APIToken is the secret every request must present as the second
	// component of its Authorization header.
	APIToken string

	// Production switches the 500 body to a generic message and trims the
	// request log to its essential fields.
	Production bool

	Logger *slog.Logger
}

// ApplyMiddleware wraps next with the middleware chain. From the outside in:
// request logging, response headers and CORS preflight, panic recovery, then
// the token gate. Only a CORS preflight is answered without a token; no request
// reaches next without one.
func ApplyMiddleware(next http.Handler, opts MiddlewareOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	wrapped := authMiddleware(logger, opts.APIToken, next)
	wrapped = recoveryMiddleware(logger, opts.Production, wrapped)
	wrapped = headersMiddleware(wrapped)
	wrapped = loggingMiddleware(logger, opts.Production, wrapped)

	return wrapped
}

// statusWriter wraps http.ResponseWriter to capture the response status code
// and the number of body bytes written.
type statusWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

// WriteHeader captures the status code and delegates to the embedded writer.
func (sw *statusWriter) WriteHeader(status int) {
	if sw.wroteHeader {
		return
	}
	sw.status = status
	sw.wroteHeader = true
	sw.ResponseWriter.WriteHeader(status)
}

// Write counts body bytes and delegates to the embedded writer.
func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.wroteHeader = true
	n, err := sw.ResponseWriter.Write(b)
	sw.bytes += n
	return n, err
}

// bearerToken returns the second whitespace-separated component of an
// Authorization header value, or a reason why none could be extracted.
func bearerToken(header string) (token, reason string) {
	if header == "" {
		return "", "missing"
	}

	parts := strings.Fields(header)
	if len(parts) < 2 {
		return "", "malformed"
	}

	return parts[1], ""
}

// authMiddleware rejects requests whose Authorization header does not carry
// token as its second component. The scheme word is not inspected.
func authMiddleware(logger *slog.Logger, token string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented, reason := bearerToken(r.Header.Get("Authorization"))
		if reason == "" && (token == "" || presented != token) {
			reason = "mismatch"
		}

		if reason != "" {
			logger.Warn("unauthorized request",
				"path", r.URL.Path,
				"reason", reason,
			)
			writeError(w, http.StatusUnauthorized, unauthorizedMessage)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// recoveryMiddleware recovers from panics in HTTP handlers, logs the error,
// and returns a 500 response. In production the body carries a fixed message;
// otherwise it carries the panic detail.
func recoveryMiddleware(logger *slog.Logger, production bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			if v == http.ErrAbortHandler {
				panic(v)
			}

			logger.Error("panic recovered",
				"panic", v,
				"path", r.URL.Path,
			)

			if production {
				writeJSON(w, http.StatusInternalServerError, errorResponse{
					Error: errorDetail{Message: "server error"},
				})
				return
			}
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: panicDetail(v)})
		}()

		next.ServeHTTP(w, r)
	})
}

func panicDetail(v any) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(v)
}

// headersMiddleware sets baseline security and CORS headers on every response
// and answers CORS preflight requests with 204. A preflight is an OPTIONS
// request carrying Access-Control-Request-Method; browsers never attach
// credentials to it, so it has to be answered ahead of the token gate.
func headersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each HTTP request with method, path, status, and
// duration. Outside production the query, client address, user agent and
// response size are logged as well.
func loggingMiddleware(logger *slog.Logger, production bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).Round(time.Microsecond),
		}
		if !production {
			attrs = append(attrs,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"bytes", sw.bytes,
			)
		}

		logger.Info("http request", attrs...)
	})
}
