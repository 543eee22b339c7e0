package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecoverPanics(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), recoverPanics(zap.New(core)))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/explode", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "internal server error", logs.All()[0].Message)
}

func TestPanicsAreLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), zap.New(core))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/explode", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	access := logs.FilterMessage("request received").All()
	require.Len(t, access, 1)
	assert.EqualValues(t, http.StatusInternalServerError, access[0].ContextMap()["status"])
	assert.Equal(t, 1, logs.FilterMessage("internal server error").Len())
}

func TestLogRequests(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), logRequests(zap.New(core)))

	req := httptest.NewRequest("POST", "/api/contact", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.4")
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "198.51.100.4", fields["ip"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
}

func TestLogRequestsImplicitOK(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hi"))
	}), logRequests(zap.New(core)))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	require.Equal(t, 1, logs.Len())
	assert.EqualValues(t, http.StatusOK, logs.All()[0].ContextMap()["status"])
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"forwarded chain", "203.0.113.7, 10.0.0.1", "10.0.0.1:1234", "203.0.113.7"},
		{"forwarded single", " 203.0.113.8 ", "", "203.0.113.8"},
		{"remote addr", "", "192.0.2.1:5555", "192.0.2.1"},
		{"remote addr without port", "", "192.0.2.2", "192.0.2.2"},
		{"nothing", "", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

func TestUserIDFromContext(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, UserIDFromContext(req.Context()))
	assert.Equal(t, "u1", UserIDFromContext(withUserID(req.Context(), "u1")))
}
