package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/repogov/pkg/infra/cache"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()

	t.Run("get returns stored value within TTL", func(t *testing.T) {
		c := cache.NewMemory()
		gt.NoError(t, c.Put(ctx, "repos", []byte(`["a"]`), time.Minute))

		data, ok := c.Get(ctx, "repos")
		gt.True(t, ok)
		gt.V(t, string(data)).Equal(`["a"]`)
	})

	t.Run("expired entry misses", func(t *testing.T) {
		c := cache.NewMemory()
		gt.NoError(t, c.Put(ctx, "repos", []byte("x"), -time.Second))

		_, ok := c.Get(ctx, "repos")
		gt.False(t, ok)
	})

	t.Run("clear removes all entries", func(t *testing.T) {
		c := cache.NewMemory()
		gt.NoError(t, c.Put(ctx, "a", []byte("1"), time.Minute))
		gt.NoError(t, c.Put(ctx, "b", []byte("2"), time.Minute))
		gt.NoError(t, c.Clear(ctx))

		_, ok := c.Get(ctx, "a")
		gt.False(t, ok)
		_, ok = c.Get(ctx, "b")
		gt.False(t, ok)
	})

	t.Run("stored value is copied", func(t *testing.T) {
		c := cache.NewMemory()
		buf := []byte("original")
		gt.NoError(t, c.Put(ctx, "k", buf, time.Minute))
		buf[0] = 'X'

		data, ok := c.Get(ctx, "k")
		gt.True(t, ok)
		gt.V(t, string(data)).Equal("original")
	})
}
