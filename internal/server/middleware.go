package server

import (
	"bufio"
	"context"
	"errors"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Middleware func(http.Handler) http.Handler

func chain(h http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

type httpStatusWriter struct {
	Status int
	inner  http.ResponseWriter
}

func (sw *httpStatusWriter) Header() http.Header {
	return sw.inner.Header()
}

func (sw *httpStatusWriter) WriteHeader(status int) {
	sw.Status = status
	sw.inner.WriteHeader(status)
}

func (sw *httpStatusWriter) Write(b []byte) (int, error) {
	if sw.Status == 0 {
		sw.Status = http.StatusOK
	}
	return sw.inner.Write(b)
}

// Hijack lets the websocket upgrader take over the connection.
func (sw *httpStatusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := sw.inner.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	sw.Status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// withMiddleware wraps h with the standard stack. Logging sits outside
// recovery so requests that panic still get an access log line.
func withMiddleware(h http.Handler, l *zap.Logger) http.Handler {
	return chain(h, logRequests(l), recoverPanics(l))
}

func logRequests(l *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			statusWriter := &httpStatusWriter{inner: w}
			t := time.Now()

			next.ServeHTTP(statusWriter, r)
			l.Info("request received",
				zap.String("method", r.Method),
				zap.String("url", r.URL.String()),
				zap.String("ip", clientIP(r)),
				zap.Int("status", statusWriter.Status),
				zap.Duration("duration", time.Since(t)),
				zap.String("agent", r.UserAgent()),
			)
		})
	}
}

func recoverPanics(l *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					l.Error("internal server error",
						zap.Any("error", err),
						zap.String("method", r.Method),
						zap.String("url", r.URL.String()),
						zap.String("remote_addr", r.RemoteAddr),
						zap.String("stack_trace", string(debug.Stack())),
					)
					_ = writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

type ctxKey struct{}

var userIDKey ctxKey

func withUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userIDKey, uid)
}

// UserIDFromContext returns the authenticated user, or "" for anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(userIDKey).(string)
	return uid
}

// requireAuth rejects requests without a valid bearer token.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, err := s.tokens.Verify(r.Header.Get("Authorization"))
		if err != nil {
			s.handleErr(w, r, AuthError(err), "")
			return
		}
		next(w, r.WithContext(withUserID(r.Context(), uid)))
	}
}

// optionalAuth attaches the user when a token is sent. A token that fails
// verification is still rejected.
func (s *Server) optionalAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next(w, r)
			return
		}
		s.requireAuth(next)(w, r)
	}
}

// clientIP prefers the first X-Forwarded-For hop, then the remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
