package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/qaioz/molstore/internal/config"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/qaioz/molstore/pkg/errors"
)

type testStruct struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// CacheTestSuite drives the cache through redismock for exact command
// expectations.
type CacheTestSuite struct {
	suite.Suite
	mock  redismock.ClientMock
	cache Cache
}

func (s *CacheTestSuite) SetupTest() {
	db, mock := redismock.NewClientMock()
	s.mock = mock
	log := logging.NewNopLogger()
	s.cache = NewRedisCache(NewClientFromUniversal(db, log), log, WithPrefix("test:"), WithDefaultTTL(time.Hour))
}

func (s *CacheTestSuite) TearDownTest() {
	assert.NoError(s.T(), s.mock.ExpectationsWereMet())
}

func (s *CacheTestSuite) TestGet_CacheHit() {
	val := testStruct{Name: "John", Age: 30}
	bytes, _ := json.Marshal(val)

	s.mock.ExpectGet("test:key1").SetVal(string(bytes))

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)

	s.NoError(err)
	s.Equal(val, dest)
}

func (s *CacheTestSuite) TestGet_CacheMiss() {
	s.mock.ExpectGet("test:key1").RedisNil()

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)

	s.True(errors.Is(err, ErrCacheMiss))
}

func (s *CacheTestSuite) TestGet_StoreError() {
	s.mock.ExpectGet("test:key1").SetErr(errors.New("READONLY"))

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)

	s.Error(err)
	s.False(errors.Is(err, ErrCacheMiss))
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestGet_CorruptValue() {
	s.mock.ExpectGet("test:key1").SetVal("{not json")

	var dest testStruct
	err := s.cache.Get(context.Background(), "key1", &dest)

	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeSerialization))
}

func (s *CacheTestSuite) TestSet_DefaultTTL() {
	s.mock.ExpectSet("test:key1", []byte(`{"name":"Ann","age":3}`), time.Hour).SetVal("OK")

	err := s.cache.Set(context.Background(), "key1", testStruct{Name: "Ann", Age: 3}, 0)
	s.NoError(err)
}

func (s *CacheTestSuite) TestSet_StoreError() {
	s.mock.ExpectSet("test:key1", []byte(`1`), time.Minute).SetErr(errors.New("OOM"))

	err := s.cache.Set(context.Background(), "key1", 1, time.Minute)
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestDelete_Success() {
	s.mock.ExpectDel("test:k1", "test:k2").SetVal(2)

	err := s.cache.Delete(context.Background(), "k1", "k2")
	s.NoError(err)
}

func (s *CacheTestSuite) TestExists_True() {
	s.mock.ExpectExists("test:k1").SetVal(1)

	exists, err := s.cache.Exists(context.Background(), "k1")
	s.NoError(err)
	s.True(exists)
}

func (s *CacheTestSuite) TestGetOrSet_Hit() {
	val := testStruct{Name: "John", Age: 30}
	bytes, _ := json.Marshal(val)

	s.mock.ExpectGet("test:key1").SetVal(string(bytes))

	loaderCalled := false
	loader := func(ctx context.Context) (interface{}, error) {
		loaderCalled = true
		return &val, nil
	}

	var dest testStruct
	err := s.cache.GetOrSet(context.Background(), "key1", &dest, time.Minute, loader)

	s.NoError(err)
	s.False(loaderCalled)
	s.Equal(val, dest)
}

func (s *CacheTestSuite) TestGetOrSet_StoreErrorPropagates() {
	s.mock.ExpectGet("test:key1").SetErr(errors.New("connection refused"))

	var dest testStruct
	err := s.cache.GetOrSet(context.Background(), "key1", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		s.Fail("loader must not run when the store fails")
		return nil, nil
	})
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
}

func (s *CacheTestSuite) TestGetOrSet_SetErrorPropagates() {
	s.mock.ExpectGet("test:key1").RedisNil()
	s.mock.ExpectSet("test:key1", []byte(`{"name":"Ann","age":3}`), time.Minute).SetErr(errors.New("redis down"))

	calls := 0
	dest := testStruct{Name: "unchanged"}
	err := s.cache.GetOrSet(context.Background(), "key1", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		calls++
		return testStruct{Name: "Ann", Age: 3}, nil
	})
	s.True(pkgerrors.IsCode(err, pkgerrors.ErrCodeCacheError))
	s.Equal(1, calls)
	s.Equal("unchanged", dest.Name)
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func newMiniCache(t *testing.T, opts ...CacheOption) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	log := logging.NewNopLogger()
	client, err := NewClient(config.RedisConfig{Addr: mr.Addr()}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, log, opts...), mr
}

func TestCache_GetOrSet_MissLoadsAndStores(t *testing.T) {
	c, mr := newMiniCache(t)
	ctx := context.Background()

	var dest testStruct
	err := c.GetOrSet(ctx, "person", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		return testStruct{Name: "Zoe", Age: 7}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Zoe", dest.Name)

	stored, err := mr.Get("person")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Zoe","age":7}`, stored)
	assert.Equal(t, time.Minute, mr.TTL("person"))
}

func TestCache_GetOrSet_LoaderErrorNotCached(t *testing.T) {
	c, mr := newMiniCache(t)
	boom := errors.New("boom")

	var dest testStruct
	err := c.GetOrSet(context.Background(), "k", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestCache_GetOrSet_ConcurrentMissesShareLoader(t *testing.T) {
	c, _ := newMiniCache(t)
	var calls int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var dest int
			_ = c.GetOrSet(context.Background(), "shared", &dest, time.Minute, func(ctx context.Context) (interface{}, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return 42, nil
			})
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(5))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestCache_DeleteByPrefix(t *testing.T) {
	c, mr := newMiniCache(t)
	ctx := context.Background()

	for _, k := range []string{"molecules:find_all", "molecules:find_all:page=1", "molecules:superstructures:smiles=C", "drugs:x"} {
		require.NoError(t, mr.Set(k, "1"))
	}

	n, err := c.DeleteByPrefix(ctx, "molecules:")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.True(t, mr.Exists("drugs:x"))
	assert.False(t, mr.Exists("molecules:find_all"))
}

func TestCache_TTLJitterStaysInBounds(t *testing.T) {
	c, mr := newMiniCache(t, WithTTLJitter(0.1))
	require.NoError(t, c.Set(context.Background(), "j", 1, 100*time.Second))

	ttl := mr.TTL("j")
	assert.GreaterOrEqual(t, ttl, 90*time.Second)
	assert.LessOrEqual(t, ttl, 110*time.Second)
}

func TestCache_Ping(t *testing.T) {
	c, _ := newMiniCache(t)
	assert.NoError(t, c.Ping(context.Background()))
}

//Personal.AI order the ending
