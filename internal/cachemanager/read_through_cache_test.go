package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCacheManager[K comparable, V any] struct {
	mock.Mock
}

var _ CacheManager[string, int] = (*mockCacheManager[string, int])(nil)

func newMockCacheManager[K comparable, V any](t *testing.T) *mockCacheManager[K, V] {
	m := &mockCacheManager[K, V]{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *mockCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	args := m.Called(ctx, key)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	args := m.Called(ctx, key, ttl)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCacheManager[K, V]) Delete(ctx context.Context, keys ...K) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *mockCacheManager[K, V]) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func loadEntity(_ context.Context, id string) (cachedEntity, error) {
	return cachedEntity{ID: id, Tags: []string{"Enemy"}}, nil
}

func TestReadThroughCache_Bypass(t *testing.T) {
	managerMock := newMockCacheManager[string, cachedEntity](t)
	rtc := NewReadThroughCache[string, cachedEntity](managerMock, loadEntity, true)
	ctx := context.Background()

	got, err := rtc.Get(ctx, "goblin", time.Minute)
	require.NoError(t, err)
	require.Equal(t, cachedEntity{ID: "goblin", Tags: []string{"Enemy"}}, got)

	got, err = rtc.GetWithRefresh(ctx, "goblin", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "goblin", got.ID)

	rtc.Put(ctx, "goblin", cachedEntity{}, time.Minute)
	require.NoError(t, rtc.Invalidate(ctx, "goblin"))
	require.NoError(t, rtc.InvalidateAll(ctx))

	require.Equal(t, Stats{Loads: 2}, rtc.Stats())
}

func TestReadThroughCache_Get_Hit(t *testing.T) {
	cached := cachedEntity{ID: "goblin", Tags: []string{"Enemy.Ground"}}
	managerMock := newMockCacheManager[string, cachedEntity](t)
	managerMock.On("Get", mock.Anything, "goblin").Return(cached, true)

	rtc := NewReadThroughCache[string, cachedEntity](managerMock, loadEntity, false)

	got, err := rtc.Get(context.Background(), "goblin", time.Minute)
	require.NoError(t, err)
	require.Equal(t, cached, got)
	require.Equal(t, Stats{Hits: 1}, rtc.Stats())
}

func TestReadThroughCache_Get_MissLoadsAndStores(t *testing.T) {
	want := cachedEntity{ID: "goblin", Tags: []string{"Enemy"}}
	managerMock := newMockCacheManager[string, cachedEntity](t)
	managerMock.On("Get", mock.Anything, "goblin").Return(cachedEntity{}, false)
	managerMock.On("Set", mock.Anything, "goblin", want, time.Minute).Return()

	rtc := NewReadThroughCache[string, cachedEntity](managerMock, loadEntity, false)

	got, err := rtc.Get(context.Background(), "goblin", time.Minute)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.Equal(t, Stats{Misses: 1, Loads: 1}, rtc.Stats())
}

func TestReadThroughCache_Get_LoaderErrorIsNotCached(t *testing.T) {
	managerMock := newMockCacheManager[string, cachedEntity](t)
	managerMock.On("Get", mock.Anything, "goblin").Return(cachedEntity{}, false)

	rtc := NewReadThroughCache[string, cachedEntity](
		managerMock,
		func(context.Context, string) (cachedEntity, error) {
			return cachedEntity{}, errors.New("entity not found")
		},
		false,
	)

	_, err := rtc.Get(context.Background(), "goblin", time.Minute)
	require.EqualError(t, err, "entity not found")
	managerMock.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_GetWithRefresh(t *testing.T) {
	cached := cachedEntity{ID: "goblin", Tags: []string{"Enemy.Ground"}}
	managerMock := newMockCacheManager[string, cachedEntity](t)
	managerMock.On("GetWithRefresh", mock.Anything, "goblin", time.Minute).Return(cached, true).Once()
	managerMock.On("GetWithRefresh", mock.Anything, "dragon", time.Minute).Return(cachedEntity{}, false).Once()
	managerMock.On("Set", mock.Anything, "dragon", mock.Anything, time.Minute).Return()

	rtc := NewReadThroughCache[string, cachedEntity](managerMock, loadEntity, false)

	got, err := rtc.GetWithRefresh(context.Background(), "goblin", time.Minute)
	require.NoError(t, err)
	require.Equal(t, cached, got)

	got, err = rtc.GetWithRefresh(context.Background(), "dragon", time.Minute)
	require.NoError(t, err)
	require.Equal(t, "dragon", got.ID)
	require.Equal(t, Stats{Hits: 1, Misses: 1, Loads: 1}, rtc.Stats())
}

func TestReadThroughCache_PutAndInvalidate(t *testing.T) {
	cache := newEntityCache()
	rtc := NewReadThroughCache[entityKey, cachedEntity](
		cache,
		func(_ context.Context, id entityKey) (cachedEntity, error) {
			return cachedEntity{ID: string(id)}, nil
		},
		false,
	)
	ctx := context.Background()

	rtc.Put(ctx, "goblin", cachedEntity{ID: "goblin", Tags: []string{"Enemy"}}, time.Minute)
	got, err := rtc.Get(ctx, "goblin", time.Minute)
	require.NoError(t, err)
	require.Equal(t, []string{"Enemy"}, got.Tags)
	require.Zero(t, rtc.Stats().Loads)

	require.NoError(t, rtc.Invalidate(ctx, "goblin"))
	got, err = rtc.Get(ctx, "goblin", time.Minute)
	require.NoError(t, err)
	require.Nil(t, got.Tags)
	require.Equal(t, uint64(1), rtc.Stats().Loads)

	require.NoError(t, rtc.InvalidateAll(ctx))
	_, err = rtc.Get(ctx, "goblin", time.Minute)
	require.NoError(t, err)
	require.Equal(t, uint64(2), rtc.Stats().Loads)
}
