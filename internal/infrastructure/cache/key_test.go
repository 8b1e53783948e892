package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildKey(t *testing.T) {
	name := "aspirin"
	var nilName *string
	minMass := 12.5

	tests := []struct {
		name   string
		prefix string
		allow  []string
		args   map[string]any
		want   string
	}{
		{"no args", "molecules:find_all", nil, nil, "molecules:find_all"},
		{"sorted by name", "p", nil, map[string]any{"b": 2, "a": 1}, "p:a=1:b=2"},
		{"nil dropped", "p", nil, map[string]any{"a": nil, "b": 2}, "p:b=2"},
		{"typed nil pointer dropped", "p", nil, map[string]any{"name": nilName, "page": 0}, "p:page=0"},
		{"pointer dereferenced", "p", nil, map[string]any{"name": &name, "min_mass": &minMass}, "p:min_mass=12.5:name=aspirin"},
		{"allow list", "molecules:superstructures", []string{"smiles", "limit"}, map[string]any{"smiles": "CCO", "limit": 10, "cache_control": "no-cache"}, "molecules:superstructures:limit=10:smiles=CCO"},
		{"allow list all filtered", "p", []string{"x"}, map[string]any{"a": 1}, "p"},
		{"nil slice dropped", "p", nil, map[string]any{"ids": []int(nil)}, "p"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildKey(tt.prefix, tt.allow, tt.args))
		})
	}
}

func TestBuildKey_OrderIndependent(t *testing.T) {
	a := map[string]any{"page": 1, "page_size": 50, "order": "desc"}
	b := map[string]any{"order": "desc", "page_size": 50, "page": 1}
	assert.Equal(t, BuildKey("k", nil, a), BuildKey("k", nil, b))
}

func TestNoCache(t *testing.T) {
	ctx := context.Background()
	assert.False(t, NoCache(ctx))
	assert.False(t, NoCache(WithCacheControl(ctx, "")))
	assert.False(t, NoCache(WithCacheControl(ctx, "max-age=60")))
	assert.True(t, NoCache(WithCacheControl(ctx, "no-cache")))
	assert.True(t, NoCache(WithCacheControl(ctx, "max-age=0, No-Cache")))
	assert.Equal(t, "no-cache", CacheControl(WithCacheControl(ctx, "no-cache")))
}

//Personal.AI order the ending
