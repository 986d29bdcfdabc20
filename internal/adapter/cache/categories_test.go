package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/niksmo/ecom-admin/internal/adapter/cache"
	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLister struct {
	mock.Mock
}

func (m *MockLister) ActiveCategories(ctx context.Context) ([]domain.CategoryRef, error) {
	args := m.Called(ctx)
	refs, _ := args.Get(0).([]domain.CategoryRef)
	return refs, args.Error(1)
}

func newTestCache(
	t *testing.T, upstream *MockLister,
) (*cache.CategoryOptionsCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewCategoryOptionsCache(client, upstream, time.Minute), mr
}

func TestCategoryOptionsCache(t *testing.T) {
	refs := []domain.CategoryRef{{ID: "c1", Name: "Rings"}, {ID: "c2", Name: "Earrings"}}

	t.Run("MissThenHit", func(t *testing.T) {
		upstream := new(MockLister)
		upstream.On("ActiveCategories", mock.Anything).Return(refs, nil).Once()
		c, _ := newTestCache(t, upstream)

		got, err := c.ActiveCategories(t.Context())
		require.NoError(t, err)
		assert.Equal(t, refs, got)

		got, err = c.ActiveCategories(t.Context())
		require.NoError(t, err)
		assert.Equal(t, refs, got)
		upstream.AssertNumberOfCalls(t, "ActiveCategories", 1)
	})

	t.Run("Invalidate", func(t *testing.T) {
		upstream := new(MockLister)
		upstream.On("ActiveCategories", mock.Anything).Return(refs, nil)
		c, _ := newTestCache(t, upstream)

		_, err := c.ActiveCategories(t.Context())
		require.NoError(t, err)
		require.NoError(t, c.InvalidateCategoryOptions(t.Context()))
		_, err = c.ActiveCategories(t.Context())
		require.NoError(t, err)
		upstream.AssertNumberOfCalls(t, "ActiveCategories", 2)
	})

	t.Run("Expiry", func(t *testing.T) {
		upstream := new(MockLister)
		upstream.On("ActiveCategories", mock.Anything).Return(refs, nil)
		c, mr := newTestCache(t, upstream)

		_, err := c.ActiveCategories(t.Context())
		require.NoError(t, err)
		mr.FastForward(2 * time.Minute)
		_, err = c.ActiveCategories(t.Context())
		require.NoError(t, err)
		upstream.AssertNumberOfCalls(t, "ActiveCategories", 2)
	})

	t.Run("UpstreamError", func(t *testing.T) {
		upstream := new(MockLister)
		upstream.On("ActiveCategories", mock.Anything).Return(nil, domain.ErrUnauthorized)
		c, mr := newTestCache(t, upstream)

		_, err := c.ActiveCategories(t.Context())
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Empty(t, mr.Keys())
	})

	t.Run("RedisDown", func(t *testing.T) {
		upstream := new(MockLister)
		upstream.On("ActiveCategories", mock.Anything).Return(refs, nil)
		c, mr := newTestCache(t, upstream)
		mr.Close()

		got, err := c.ActiveCategories(t.Context())
		require.NoError(t, err)
		assert.Equal(t, refs, got)

		err = c.InvalidateCategoryOptions(t.Context())
		assert.Error(t, err)
		assert.False(t, errors.Is(err, redis.Nil))
	})
}
