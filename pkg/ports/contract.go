package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunResponseCacheContract runs a suite of tests to verify that a
// ResponseCache implementation adheres to the interface contract.
func RunResponseCacheContract(t *testing.T, cache ResponseCache) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("20060102150405.000000")

	t.Run("Miss", func(t *testing.T) {
		_, err := cache.Get(ctx, key+"-absent")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("Set and Get", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, key, "first"))

		got, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "first", got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, key, "second"))

		got, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "second", got)
	})

	t.Run("Multiline Unicode", func(t *testing.T) {
		value := "# Título\n\n- ünïcödé ✓\n"
		require.NoError(t, cache.Set(ctx, key+"-utf8", value))

		got, err := cache.Get(ctx, key+"-utf8")
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, cache.Delete(ctx, key))
		_, err := cache.Get(ctx, key)
		assert.ErrorIs(t, err, ErrCacheMiss)

		assert.NoError(t, cache.Delete(ctx, key), "deleting twice is not an error")
	})

	t.Run("Concurrent Access", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				k := fmt.Sprintf("%s-c%d", key, n)
				assert.NoError(t, cache.Set(ctx, k, k))
				got, err := cache.Get(ctx, k)
				assert.NoError(t, err)
				assert.Equal(t, k, got)
			}(i)
		}
		wg.Wait()
	})
}
