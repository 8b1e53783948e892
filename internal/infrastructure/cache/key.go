// Package cache implements read-through caching of service results on top of
// the redis JSON cache.  Keys are derived from the call arguments so two calls
// with the same effective arguments share one entry.
package cache

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// BuildKey renders prefix plus the non-nil arguments as
// prefix:name=value:name=value with names sorted.  When allow is non-empty
// only the named arguments take part.  Pointer values are dereferenced.
func BuildKey(prefix string, allow []string, args map[string]any) string {
	var allowed map[string]struct{}
	if len(allow) > 0 {
		allowed = make(map[string]struct{}, len(allow))
		for _, name := range allow {
			allowed[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(args))
	values := make(map[string]any, len(args))
	for name, v := range args {
		if allowed != nil {
			if _, ok := allowed[name]; !ok {
				continue
			}
		}
		v, ok := deref(v)
		if !ok {
			continue
		}
		names = append(names, name)
		values[name] = v
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(prefix)
	for _, name := range names {
		b.WriteByte(':')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(fmt.Sprint(values[name]))
	}
	return b.String()
}

// deref follows pointers and reports false for nil, including typed nil
// pointers wrapped in an interface.
func deref(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return nil, false
		}
	}
	return rv.Interface(), true
}

type cacheControlKey struct{}

// WithCacheControl stores the request's Cache-Control header in ctx.
func WithCacheControl(ctx context.Context, header string) context.Context {
	if header == "" {
		return ctx
	}
	return context.WithValue(ctx, cacheControlKey{}, header)
}

// CacheControl returns the header stored by WithCacheControl.
func CacheControl(ctx context.Context) string {
	h, _ := ctx.Value(cacheControlKey{}).(string)
	return h
}

// NoCache reports whether the caller asked to skip cached values.
func NoCache(ctx context.Context) bool {
	return HeaderHasNoCache(CacheControl(ctx))
}

// HeaderHasNoCache reports whether a Cache-Control header value carries the
// no-cache directive.
func HeaderHasNoCache(header string) bool {
	for _, directive := range strings.Split(header, ",") {
		if strings.EqualFold(strings.TrimSpace(directive), "no-cache") {
			return true
		}
	}
	return false
}

//Personal.AI order the ending
