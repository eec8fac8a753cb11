package cache_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/driveline-dms/driveline/internal/platform/cache"
)

func TestNewPingsTheServer(t *testing.T) {
	srv := miniredis.RunT(t)

	client, err := cache.New(context.Background(), srv.Addr())
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := srv.Get("k")
	require.NoError(t, err)
	require.Equal(t, "v", got)
}

func TestNewFailsWhenUnreachable(t *testing.T) {
	_, err := cache.New(context.Background(), "127.0.0.1:59998")
	require.Error(t, err)
	require.Contains(t, err.Error(), "cache: connect")
}
