package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestTwinResolver(twins *fakeTwinClient, cache *fakeCache) *TwinResolver {
	return NewTwinResolver(twins, cache, time.Minute, zap.NewNop())
}

func TestResolveBatchesMissesIntoSingleCall(t *testing.T) {
	twins := &fakeTwinClient{twins: map[string]string{"asset-1": "twin-1", "asset-2": "twin-2"}}
	resolver := newTestTwinResolver(twins, newFakeCache())

	resolved, err := resolver.Resolve(context.Background(), "site-1", []string{"asset-1", "asset-2", "asset-3"})
	require.NoError(t, err)
	assert.Equal(t, 1, twins.calls)
	assert.Equal(t, map[string]string{"asset-1": "twin-1", "asset-2": "twin-2"}, resolved)

	// asset-3 had no match: absent, not empty
	_, ok := resolved["asset-3"]
	assert.False(t, ok)
}

func TestResolveServesCacheHitsWithoutClientCall(t *testing.T) {
	twins := &fakeTwinClient{twins: map[string]string{"asset-1": "twin-1"}}
	cache := newFakeCache()
	resolver := newTestTwinResolver(twins, cache)

	first, err := resolver.Resolve(context.Background(), "site-1", []string{"asset-1"})
	require.NoError(t, err)
	require.Equal(t, "twin-1", first["asset-1"])
	require.Equal(t, 1, twins.calls)

	second, err := resolver.Resolve(context.Background(), "site-1", []string{"asset-1"})
	require.NoError(t, err)
	assert.Equal(t, "twin-1", second["asset-1"])
	assert.Equal(t, 1, twins.calls)
}

func TestResolveDoesNotCacheMisses(t *testing.T) {
	twins := &fakeTwinClient{}
	resolver := newTestTwinResolver(twins, newFakeCache())

	_, err := resolver.Resolve(context.Background(), "site-1", []string{"asset-1"})
	require.NoError(t, err)
	require.Equal(t, 1, twins.calls)

	// the twin appears later; a fresh lookup must reach the client again
	twins.twins = map[string]string{"asset-1": "twin-1"}
	resolved, err := resolver.Resolve(context.Background(), "site-1", []string{"asset-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, twins.calls)
	assert.Equal(t, "twin-1", resolved["asset-1"])
}

func TestResolvePropagatesTransportErrors(t *testing.T) {
	transportErr := errors.New("upstream unavailable")
	resolver := newTestTwinResolver(&fakeTwinClient{err: transportErr}, newFakeCache())

	resolved, err := resolver.Resolve(context.Background(), "site-1", []string{"asset-1"})
	require.ErrorIs(t, err, transportErr)
	assert.Nil(t, resolved)
}

func TestResolveDedupesAndSkipsEmptyIDs(t *testing.T) {
	twins := &fakeTwinClient{twins: map[string]string{"asset-1": "twin-1"}}
	resolver := newTestTwinResolver(twins, newFakeCache())

	resolved, err := resolver.Resolve(context.Background(), "site-1", []string{"", "asset-1", "asset-1", ""})
	require.NoError(t, err)
	assert.Equal(t, 1, twins.calls)
	assert.Equal(t, map[string]string{"asset-1": "twin-1"}, resolved)
}

func TestResolveAllCachedSkipsClientEntirely(t *testing.T) {
	twins := &fakeTwinClient{}
	cache := newFakeCache()
	cache.entries[twinCacheKey("site-1", "asset-1")] = "twin-1"
	resolver := newTestTwinResolver(twins, cache)

	resolved, err := resolver.Resolve(context.Background(), "site-1", []string{"asset-1"})
	require.NoError(t, err)
	assert.Zero(t, twins.calls)
	assert.Equal(t, "twin-1", resolved["asset-1"])
}

func TestResolveWorksWithoutCache(t *testing.T) {
	twins := &fakeTwinClient{twins: map[string]string{"asset-1": "twin-1"}}
	resolver := NewTwinResolver(twins, nil, time.Minute, zap.NewNop())

	resolved, err := resolver.Resolve(context.Background(), "site-1", []string{"asset-1"})
	require.NoError(t, err)
	assert.Equal(t, "twin-1", resolved["asset-1"])
}
