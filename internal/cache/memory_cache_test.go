package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "emb:mock:abc", []float32{0.1, 0.2, 0.3}, time.Minute))

	var got []float32
	hit, err := c.GetJSON(ctx, "emb:mock:abc", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got)
}

func TestMemoryCache_Miss(t *testing.T) {
	c := NewMemoryCache()

	var got []float32
	hit, err := c.GetJSON(context.Background(), "emb:mock:nope", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, got)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	var got string
	hit, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestMemoryCache_Overwrite(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "k", "primero", time.Minute))
	require.NoError(t, c.SetJSON(ctx, "k", "segundo", time.Minute))

	var got string
	hit, err := c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "segundo", got)
}

func TestMemoryCache_EvictsWhenFull(t *testing.T) {
	c := NewMemoryCache()
	c.maxEntries = 2
	ctx := context.Background()

	require.NoError(t, c.SetJSON(ctx, "a", 1, time.Minute))
	require.NoError(t, c.SetJSON(ctx, "b", 2, time.Minute))
	require.NoError(t, c.SetJSON(ctx, "c", 3, time.Minute))

	assert.Len(t, c.entries, 2)

	var got int
	hit, err := c.GetJSON(ctx, "c", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, got)
}
