package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arqgene/dockprep/internal/infrastructure/monitoring/logging"
	apperrors "github.com/arqgene/dockprep/pkg/errors"
)

type cachedCompound struct {
	CID    int64  `json:"cid"`
	SMILES string `json:"smiles"`
}

func newTestCache(t *testing.T) (Cache, redismock.ClientMock) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	client := &Client{rdb: db, logger: logging.NewNopLogger()}
	return NewCache(client, logging.NewNopLogger(), WithPrefix("test:")), mock
}

func TestCacheGetHit(t *testing.T) {
	cache, mock := newTestCache(t)
	want := cachedCompound{CID: 2244, SMILES: "CC(=O)OC1=CC=CC=C1C(=O)O"}
	data, _ := json.Marshal(want)
	mock.ExpectGet("test:pubchem:aspirin").SetVal(string(data))

	var got cachedCompound
	require.NoError(t, cache.Get(context.Background(), "pubchem:aspirin", &got))
	assert.Equal(t, want, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheGetMiss(t *testing.T) {
	cache, mock := newTestCache(t)
	mock.ExpectGet("test:pubchem:unknown").RedisNil()

	var got cachedCompound
	err := cache.Get(context.Background(), "pubchem:unknown", &got)
	assert.Equal(t, ErrCacheMiss, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheGetNullMarkerIsMiss(t *testing.T) {
	cache, mock := newTestCache(t)
	mock.ExpectGet("test:uniprot:none").SetVal(nullMarker)

	var got string
	err := cache.Get(context.Background(), "uniprot:none", &got)
	assert.Equal(t, ErrCacheMiss, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheDelete(t *testing.T) {
	cache, mock := newTestCache(t)
	mock.ExpectDel("test:a", "test:b").SetVal(2)

	require.NoError(t, cache.Delete(context.Background(), "a", "b"))
	assert.NoError(t, mock.ExpectationsWereMet())

	// Deleting nothing is a no-op, not a command.
	require.NoError(t, cache.Delete(context.Background()))
}

func TestGetOrSetCacheHitSkipsLoader(t *testing.T) {
	cache, mock := newTestCache(t)
	data, _ := json.Marshal("MRPSGTAGAA")
	mock.ExpectGet("test:seq:P00533").SetVal(string(data))

	var got string
	err := cache.GetOrSet(context.Background(), "seq:P00533", &got, time.Hour,
		func(ctx context.Context) (interface{}, error) {
			t.Fatal("loader must not run on a cache hit")
			return nil, nil
		})
	require.NoError(t, err)
	assert.Equal(t, "MRPSGTAGAA", got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSetLoaderErrorPropagates(t *testing.T) {
	cache, mock := newTestCache(t)
	mock.ExpectGet("test:seq:BAD").RedisNil()

	var got string
	loadErr := apperrors.New(apperrors.ErrCodeSourceUnavailable, "uniprot down")
	err := cache.GetOrSet(context.Background(), "seq:BAD", &got, time.Hour,
		func(ctx context.Context) (interface{}, error) { return nil, loadErr })
	assert.Equal(t, loadErr, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSetNilResultCachesNull(t *testing.T) {
	cache, mock := newTestCache(t)
	mock.ExpectGet("test:seq:NONE").RedisNil()
	mock.ExpectSet("test:seq:NONE", nullMarker, 30*time.Second).SetVal("OK")

	var got string
	err := cache.GetOrSet(context.Background(), "seq:NONE", &got, time.Hour,
		func(ctx context.Context) (interface{}, error) { return nil, nil })
	assert.Equal(t, ErrCacheMiss, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSetLoadedValueReachesDest(t *testing.T) {
	cache, mock := newTestCache(t)
	mock.ExpectGet("test:seq:P01308").RedisNil()
	// No Set expectation: the cache-populate step failing must not hide the
	// loaded value from the caller.

	var got string
	err := cache.GetOrSet(context.Background(), "seq:P01308", &got, time.Hour,
		func(ctx context.Context) (interface{}, error) { return "MALWMRLLPL", nil })
	require.NoError(t, err)
	assert.Equal(t, "MALWMRLLPL", got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
