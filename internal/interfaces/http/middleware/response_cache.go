package middleware

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"mime"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/qaioz/molstore/internal/infrastructure/cache"
	"github.com/qaioz/molstore/internal/infrastructure/database/redis"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/prometheus"
)

const responseCacheLabel = "response"

// DefaultMaxBodyBytes bounds the responses the cache stores.
const DefaultMaxBodyBytes = 1 << 20

// DefaultResponsePatterns selects the cached paths when none are configured.
var DefaultResponsePatterns = []string{"**/molecules/**"}

// ResponseCacheConfig tunes ResponseCache.
type ResponseCacheConfig struct {
	// Patterns are fnmatch-style globs over the request path.  "*" also
	// matches "/".
	Patterns     []string
	TTL          time.Duration
	MaxBodyBytes int64
}

// CachedResponse is the stored form of a response.
type CachedResponse struct {
	Body       json.RawMessage     `json:"body"`
	StatusCode int                 `json:"status_code"`
	Headers    map[string][]string `json:"headers"`
}

// responseBuffer records a response without sending it.
type responseBuffer struct {
	header      http.Header
	statusCode  int
	wroteHeader bool
	body        bytes.Buffer
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: make(http.Header), statusCode: http.StatusOK}
}

func (b *responseBuffer) Header() http.Header { return b.header }

func (b *responseBuffer) WriteHeader(code int) {
	if !b.wroteHeader {
		b.statusCode = code
		b.wroteHeader = true
	}
}

func (b *responseBuffer) Write(p []byte) (int, error) {
	b.WriteHeader(http.StatusOK)
	return b.body.Write(p)
}

func (b *responseBuffer) flushTo(w http.ResponseWriter) {
	copyHeaders(w.Header(), b.header)
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(b.body.Bytes())
}

func copyHeaders(dst http.Header, src map[string][]string) {
	for k, vs := range src {
		dst[k] = append([]string(nil), vs...)
	}
}

// ResponseCache serves GET responses for matching paths from store.  Only
// 200 JSON responses within the size limit are stored.  A request carrying
// Cache-Control: no-cache skips the stored entry and refreshes it.
func ResponseCache(store redis.Cache, cfg ResponseCacheConfig, logger logging.Logger, metrics *prometheus.AppMetrics) (func(http.Handler) http.Handler, error) {
	if len(cfg.Patterns) == 0 {
		cfg.Patterns = DefaultResponsePatterns
	}
	if cfg.TTL <= 0 {
		cfg.TTL = cache.DefaultTTL
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if metrics == nil {
		metrics = prometheus.NewNopAppMetrics()
	}
	matchers := make([]*regexp.Regexp, 0, len(cfg.Patterns))
	for _, p := range cfg.Patterns {
		re, err := compileGlob(p)
		if err != nil {
			return nil, fmt.Errorf("response cache pattern %q: %w", p, err)
		}
		matchers = append(matchers, re)
	}
	logger = logger.Named("response_cache")

	// match returns the first pattern matching path; it doubles as the
	// metrics label.
	match := func(path string) (string, bool) {
		for i, re := range matchers {
			if re.MatchString(path) {
				return cfg.Patterns[i], true
			}
		}
		return "", false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pattern, ok := match(r.URL.Path)
			if r.Method != http.MethodGet || !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := ResponseCacheKey(r)
			bypass := cache.HeaderHasNoCache(r.Header.Get("Cache-Control"))

			var cached CachedResponse
			err := store.Get(ctx, key, &cached)
			switch {
			case err == nil && !bypass:
				logger.Info("cache hit", logging.String("key", key))
				prometheus.RecordCacheAccess(metrics, responseCacheLabel, pattern, true)
				copyHeaders(w.Header(), cached.Headers)
				w.WriteHeader(cached.StatusCode)
				_, _ = w.Write(cached.Body)
				return
			case err == nil:
				logger.Info("no-cache header found, revalidating", logging.String("key", key))
			case stderrors.Is(err, redis.ErrCacheMiss):
				logger.Info("cache miss", logging.String("key", key))
				prometheus.RecordCacheAccess(metrics, responseCacheLabel, pattern, false)
			default:
				logger.Warn("response cache read failed", logging.String("key", key), logging.Err(err))
				prometheus.RecordCacheError(metrics, responseCacheLabel, "get")
			}

			buf := newResponseBuffer()
			next.ServeHTTP(buf, r)

			if entry, ok := cacheable(buf, cfg.MaxBodyBytes); ok {
				if err := store.Set(ctx, key, entry, cfg.TTL); err != nil {
					logger.Warn("response cache write failed", logging.String("key", key), logging.Err(err))
					prometheus.RecordCacheError(metrics, responseCacheLabel, "set")
				}
			}
			buf.flushTo(w)
		})
	}, nil
}

// cacheable returns the entry to store for buf, or false when the response
// must not be cached.
func cacheable(buf *responseBuffer, maxBody int64) (*CachedResponse, bool) {
	if buf.statusCode != http.StatusOK {
		return nil, false
	}
	mediaType, _, err := mime.ParseMediaType(buf.header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return nil, false
	}
	if cl := buf.header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil && n > maxBody {
			return nil, false
		}
	}
	if int64(buf.body.Len()) > maxBody {
		return nil, false
	}
	body := bytes.TrimSpace(buf.body.Bytes())
	if !json.Valid(body) {
		return nil, false
	}

	headers := make(map[string][]string, len(buf.header))
	for k, vs := range buf.header {
		if k == "Content-Length" {
			continue
		}
		headers[k] = append([]string(nil), vs...)
	}
	return &CachedResponse{
		Body:       json.RawMessage(append([]byte(nil), body...)),
		StatusCode: buf.statusCode,
		Headers:    headers,
	}, true
}

// ResponseCacheKey renders path?k=v&k=v with the query pairs sorted.  A
// repeated parameter contributes one pair per value.
func ResponseCacheKey(r *http.Request) string {
	query := r.URL.Query()
	pairs := make([]string, 0, len(query))
	for k, vs := range query {
		for _, v := range vs {
			pairs = append(pairs, k+"="+v)
		}
	}
	sort.Strings(pairs)
	return r.URL.Path + "?" + strings.Join(pairs, "&")
}

// compileGlob translates an fnmatch pattern into an anchored regexp.  Unlike
// path.Match, "*" and "?" also match "/".
func compileGlob(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("(?s)^")
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		case '[':
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				sb.WriteString(`\[`)
				continue
			}
			class := pattern[i+1 : i+1+end]
			if end == 0 {
				// "[]...]" keeps a leading ']' inside the class.
				next := strings.IndexByte(pattern[i+2:], ']')
				if next < 0 {
					sb.WriteString(`\[`)
					continue
				}
				class = pattern[i+1 : i+2+next]
				end = next + 1
			}
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}
			sb.WriteString("[" + strings.ReplaceAll(class, `\`, `\\`) + "]")
			i += end + 1
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}

//Personal.AI order the ending
