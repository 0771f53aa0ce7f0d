package db

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func TestCheckRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, CheckRedis(context.Background(), client))
	require.False(t, mr.Exists("jdl:healthcheck"))
}

func TestCheckRedisNilClient(t *testing.T) {
	require.Error(t, CheckRedis(context.Background(), nil))
}
