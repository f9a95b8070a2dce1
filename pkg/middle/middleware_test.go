package middle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	var scoped *zap.Logger
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		scoped = Logger(r.Context(), nil)
	})

	rr := httptest.NewRecorder()
	RequestIDMiddleware(zap.NewNop())(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.True(t, strings.HasPrefix(seen, "req-"))
	assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))
	assert.NotNil(t, scoped)
}

func TestRequestID_Missing(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
	fallback := zap.NewNop()
	assert.Same(t, fallback, Logger(context.Background(), fallback))
}

func TestLoggingMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Run not found", http.StatusNotFound)
	})
	h := Chain(next, RequestIDMiddleware(logger), LoggingMiddleware(logger))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/runs/x", nil))

	require.Equal(t, 1, logs.FilterMessage("Request completed").Len())
	fields := logs.FilterMessage("Request completed").All()[0].ContextMap()
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
	assert.Equal(t, "/api/v1/runs/x", fields["path"])
	assert.Equal(t, rr.Header().Get("X-Request-ID"), fields["request_id"])
}

func TestLoggingMiddleware_RecoversPanic(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rr := httptest.NewRecorder()
	LoggingMiddleware(zap.New(core))(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, 1, logs.FilterMessage("Internal Server Error").Len())
}
