package redisconn_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Blessedbiello/Z402/pkg/redisconn"
)

func TestConnect(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	client, err := redisconn.Connect(context.Background(), redisconn.Config{
		URL:            "redis://" + mr.Addr(),
		RetryAttempts:  1,
		RetryInterval:  10 * time.Millisecond,
		ConnectTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Ping(context.Background()).Err())
}

func TestConnect_ZeroValueConfigDefaults(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	// Only the URL set; attempts and timeouts fall back to sane defaults.
	client, err := redisconn.Connect(context.Background(), redisconn.Config{
		URL: "redis://" + mr.Addr(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
}

func TestConnect_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := redisconn.Connect(context.Background(), redisconn.Config{
		URL: "http://not-a-redis-url",
	})
	require.ErrorIs(t, err, redisconn.ErrInvalidConnectionURL)
}

func TestConnect_ServerUnavailable(t *testing.T) {
	t.Parallel()

	start := time.Now()
	_, err := redisconn.Connect(context.Background(), redisconn.Config{
		URL:            "redis://127.0.0.1:1", // nothing listens here
		RetryAttempts:  2,
		RetryInterval:  10 * time.Millisecond,
		ConnectTimeout: 2 * time.Second,
	})
	require.ErrorIs(t, err, redisconn.ErrNotReady)
	assert.Less(t, time.Since(start), 2*time.Second)
}
