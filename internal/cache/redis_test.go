package cache_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/libris/internal/cache"
)

func TestOpenRedis_Pings(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := cache.OpenRedis(context.Background(), mr.Addr(), 0)

	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	assert.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	assert.Equal(t, "v", mr.Get("k"))
}

func TestOpenRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := cache.OpenRedis(context.Background(), addr, 0)

	assert.Error(t, err)
}
