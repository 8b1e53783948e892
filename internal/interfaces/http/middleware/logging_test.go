package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaioz/molstore/internal/infrastructure/cache"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/internal/testutil"
)

func statusHandler(code int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestRequestLogging_Levels(t *testing.T) {
	tests := []struct {
		status int
		level  string
		msg    string
	}{
		{http.StatusOK, "info", "HTTP request completed"},
		{http.StatusNotFound, "warn", "HTTP request completed with client error"},
		{http.StatusInternalServerError, "error", "HTTP request completed with server error"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			log := testutil.NewMockLogger()
			h := RequestLogging(log, DefaultLoggingConfig())(statusHandler(tt.status))

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/molecules?page=1", nil))

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, 1, log.Count(tt.level, tt.msg))
		})
	}
}

func TestRequestLogging_SlowAndSkipped(t *testing.T) {
	log := testutil.NewMockLogger()
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})
	h := RequestLogging(log, LoggingConfig{SkipPaths: []string{"/healthz"}, SlowThreshold: time.Millisecond})(slow)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/molecules", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, 1, log.Count("warn", "HTTP request completed (slow)"))
	assert.Len(t, log.GetMessages(), 1)
}

func TestRequestContext_PropagatesRequestIDAndCacheControl(t *testing.T) {
	var gotID, gotCC string
	var noCache bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = logging.RequestIDFromContext(r.Context())
		gotCC = cache.CacheControl(r.Context())
		noCache = cache.NoCache(r.Context())
	})
	h := chimw.RequestID(RequestContext(inner))

	req := httptest.NewRequest(http.MethodGet, "/molecules", nil)
	req.Header.Set(chimw.RequestIDHeader, "req-42")
	req.Header.Set("Cache-Control", "no-cache")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "req-42", gotID)
	assert.Equal(t, "req-42", w.Header().Get(chimw.RequestIDHeader))
	assert.Equal(t, "no-cache", gotCC)
	assert.True(t, noCache)
}

func TestRequestTiming_LogsAndLabelsRoute(t *testing.T) {
	log := testutil.NewMockLogger()
	r := chi.NewRouter()
	r.Use(RequestTiming(log, nil))
	r.Get("/molecules/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/molecules/5?x=1", nil))

	msgs := log.GetMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "info", msgs[0].Level)
	assert.True(t, strings.HasPrefix(msgs[0].Message, "Request GET /molecules/5 x=1 processed in "), msgs[0].Message)
	assert.True(t, strings.HasSuffix(msgs[0].Message, " seconds"))
}

func TestRoutePattern(t *testing.T) {
	assert.Equal(t, unmatchedRoute, routePattern(httptest.NewRequest(http.MethodGet, "/", nil)))

	var pattern string
	r := chi.NewRouter()
	r.Get("/drugs/{id}", func(w http.ResponseWriter, req *http.Request) {
		pattern = routePattern(req)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/drugs/3", nil))
	assert.Equal(t, "/drugs/{id}", pattern)
}

//Personal.AI order the ending
