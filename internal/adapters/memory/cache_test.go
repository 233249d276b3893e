package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/chargemap/internal/adapters/memory"
)

func TestCache_SetGetDelete(t *testing.T) {
	c := memory.NewCache(time.Minute)
	ctx := context.Background()

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, memory.ErrCacheMiss)

	val := []byte("v1")
	require.NoError(t, c.Set(ctx, "k", val, 60))
	val[0] = 'x'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, memory.ErrCacheMiss)
}

func TestCache_Expiry(t *testing.T) {
	c := memory.NewCache(time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 1))
	time.Sleep(1100 * time.Millisecond)

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, memory.ErrCacheMiss)
}
