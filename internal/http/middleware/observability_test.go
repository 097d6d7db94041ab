package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"lexfirm-api/internal/http/middleware"
	"lexfirm-api/internal/observability/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("lexfirm-api-test", "error")
	require.NoError(t, err)
	return log
}

func TestRequestIDMiddleware_GeneratesWhenMissing(t *testing.T) {
	var seen string
	h := middleware.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.GetRequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-Id"))
}

func TestRequestIDMiddleware_PropagatesClientID(t *testing.T) {
	var seen string
	h := middleware.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.GetRequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "client-supplied-id")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "client-supplied-id", seen)
	assert.Equal(t, "client-supplied-id", rec.Header().Get("X-Request-Id"))
}

func TestRequestLoggingMiddleware_PassesThrough(t *testing.T) {
	h := middleware.RequestLoggingMiddleware(testLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "short and stout", rec.Body.String())
}

func TestRecoveryMiddleware_TurnsPanicInto500(t *testing.T) {
	h := middleware.RequestLoggingMiddleware(testLogger(t))(
		middleware.RecoveryMiddleware(testLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		})),
	)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}
