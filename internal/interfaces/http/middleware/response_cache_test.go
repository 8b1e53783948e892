package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaioz/molstore/internal/config"
	"github.com/qaioz/molstore/internal/infrastructure/database/redis"
	"github.com/qaioz/molstore/internal/testutil"
)

func newResponseStore(t *testing.T) (redis.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	log := testutil.NewMockLogger()
	client, err := redis.NewClient(config.RedisConfig{Addr: mr.Addr()}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewRedisCache(client, log), mr
}

// countingJSON answers {"n": <call number>} and counts its calls.
func countingJSON(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		body := fmt.Sprintf(`{"n":%d}`, *calls)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		w.Header().Set("X-Molecule", "yes")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	})
}

func newResponseCache(t *testing.T, store redis.Cache, cfg ResponseCacheConfig, next http.Handler) (http.Handler, *testutil.MockLogger) {
	t.Helper()
	log := testutil.NewMockLogger()
	mw, err := ResponseCache(store, cfg, log, nil)
	require.NoError(t, err)
	return mw(next), log
}

func get(h http.Handler, target string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestCompileGlob(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"**/molecules/**", "/molecules/1", true},
		{"**/molecules/**", "/molecules/search/superstructures", true},
		{"**/molecules/**", "/api/molecules/", true},
		{"**/molecules/**", "/molecules", false},
		{"**/molecules/**", "/drugs/1", false},
		{"/drugs/?", "/drugs/1", true},
		{"/drugs/?", "/drugs/12", false},
		{"/drugs/[0-9]", "/drugs/7", true},
		{"/drugs/[!0-9]", "/drugs/7", false},
		{"/a.b", "/aXb", false},
		{"/a[b", "/a[b", true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			re, err := compileGlob(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, re.MatchString(tt.path))
		})
	}
}

func TestResponseCacheKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/molecules/search/superstructures?smiles=CC&limit=5&a=2&a=1", nil)
	assert.Equal(t, "/molecules/search/superstructures?a=1&a=2&limit=5&smiles=CC", ResponseCacheKey(req))

	req = httptest.NewRequest(http.MethodGet, "/molecules/1", nil)
	assert.Equal(t, "/molecules/1?", ResponseCacheKey(req))
}

func TestResponseCache_HitSkipsHandler(t *testing.T) {
	store, mr := newResponseStore(t)
	calls := 0
	h, log := newResponseCache(t, store, ResponseCacheConfig{}, countingJSON(&calls))

	first := get(h, "/molecules/1?b=2&a=1")
	require.Equal(t, http.StatusOK, first.Code)
	assert.JSONEq(t, `{"n":1}`, first.Body.String())

	second := get(h, "/molecules/1?a=1&b=2")
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, `{"n":1}`, second.Body.String())
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.Equal(t, "yes", second.Header().Get("X-Molecule"))
	assert.Equal(t, 1, calls)

	assert.True(t, mr.Exists("/molecules/1?a=1&b=2"))
	assert.Equal(t, 7*24*time.Hour, mr.TTL("/molecules/1?a=1&b=2"))
	assert.Equal(t, 1, log.Count("info", "cache miss"))
	assert.Equal(t, 1, log.Count("info", "cache hit"))
}

func TestResponseCache_StoredEntryDropsContentLength(t *testing.T) {
	store, _ := newResponseStore(t)
	calls := 0
	h, _ := newResponseCache(t, store, ResponseCacheConfig{}, countingJSON(&calls))
	get(h, "/molecules/1")

	var entry CachedResponse
	require.NoError(t, store.Get(context.Background(), "/molecules/1?", &entry))
	assert.Equal(t, http.StatusOK, entry.StatusCode)
	assert.JSONEq(t, `{"n":1}`, string(entry.Body))
	assert.NotContains(t, entry.Headers, "Content-Length")
	assert.Equal(t, []string{"application/json"}, entry.Headers["Content-Type"])
}

func TestResponseCache_NoCacheRevalidates(t *testing.T) {
	store, _ := newResponseStore(t)
	calls := 0
	h, _ := newResponseCache(t, store, ResponseCacheConfig{}, countingJSON(&calls))

	assert.JSONEq(t, `{"n":1}`, get(h, "/molecules/1").Body.String())
	assert.JSONEq(t, `{"n":2}`, get(h, "/molecules/1", "Cache-Control", "max-age=0, no-cache").Body.String())
	assert.JSONEq(t, `{"n":2}`, get(h, "/molecules/1").Body.String())
	assert.Equal(t, 2, calls)
}

func TestResponseCache_PassThrough(t *testing.T) {
	store, mr := newResponseStore(t)
	calls := 0
	h, _ := newResponseCache(t, store, ResponseCacheConfig{}, countingJSON(&calls))

	get(h, "/drugs/1")
	get(h, "/drugs/1")
	assert.Equal(t, 2, calls)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/molecules/upload", nil)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 4, calls)
	assert.Empty(t, mr.Keys())
}

func TestResponseCache_UncacheableResponses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":"MOL_004"}`))
		}},
		{"not json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("hello"))
		}},
		{"invalid json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"n":`))
		}},
		{"too large", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`"` + strings.Repeat("x", 64) + `"`))
		}},
		{"declared too large", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Content-Length", "4096")
			_, _ = w.Write([]byte(`{}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mr := newResponseStore(t)
			calls := 0
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				tt.handler(w, r)
			})
			h, _ := newResponseCache(t, store, ResponseCacheConfig{MaxBodyBytes: 32}, next)

			first := get(h, "/molecules/1")
			get(h, "/molecules/1")
			assert.Equal(t, 2, calls)
			assert.Empty(t, mr.Keys())

			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(http.MethodGet, "/molecules/1", nil))
			assert.Equal(t, rec.Code, first.Code)
			assert.Equal(t, rec.Body.String(), first.Body.String())
		})
	}
}

func TestResponseCache_StoreFailureStillServes(t *testing.T) {
	store, mr := newResponseStore(t)
	calls := 0
	h, log := newResponseCache(t, store, ResponseCacheConfig{}, countingJSON(&calls))
	mr.SetError("LOADING server is loading")

	w := get(h, "/molecules/1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"n":1}`, w.Body.String())
	assert.Equal(t, 1, log.Count("warn", "response cache read failed"))
	assert.Equal(t, 1, log.Count("warn", "response cache write failed"))
}

func TestResponseCache_CustomPatternsAndTTL(t *testing.T) {
	store, mr := newResponseStore(t)
	calls := 0
	h, _ := newResponseCache(t, store, ResponseCacheConfig{Patterns: []string{"/drugs*"}, TTL: time.Minute}, countingJSON(&calls))

	get(h, "/drugs")
	get(h, "/drugs")
	get(h, "/molecules/1")
	assert.Equal(t, 2, calls)
	assert.Equal(t, time.Minute, mr.TTL("/drugs?"))
}

func TestResponseCache_InvalidPattern(t *testing.T) {
	store, _ := newResponseStore(t)
	_, err := ResponseCache(store, ResponseCacheConfig{Patterns: []string{"/[z-a]"}}, testutil.NewMockLogger(), nil)
	assert.Error(t, err)
}

//Personal.AI order the ending
