//go:build integration

// Integration tests for the redis case lock against a real server. They need
// Docker and run with the "integration" build tag.
package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/civil-general-applications/internal/config"
	redisclient "github.com/turtacn/civil-general-applications/internal/infrastructure/database/redis"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

// startRedis launches a Redis 7 container and returns a connected client.
func startRedis(t *testing.T) *redisclient.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := redisclient.NewClient(ctx, config.RedisConfig{
		Addr:        fmt.Sprintf("%s:%s", host, port.Port()),
		KeyPrefix:   "ga-it",
		DialTimeout: 5 * time.Second,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCaseLocker_Integration(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()

	t.Run("second owner waits for release", func(t *testing.T) {
		locker := redisclient.NewCaseLocker(client, nil,
			redisclient.WithRetryCount(3), redisclient.WithRetryDelay(20*time.Millisecond))

		release, err := locker.Acquire(ctx, "1700000000000001")
		require.NoError(t, err)

		_, err = locker.Acquire(ctx, "1700000000000001")
		assert.True(t, errors.IsCode(err, errors.ErrCodeConflict))

		require.NoError(t, release(ctx))
		again, err := locker.Acquire(ctx, "1700000000000001")
		require.NoError(t, err)
		require.NoError(t, again(ctx))
	})

	t.Run("expired lock is not released over the new owner", func(t *testing.T) {
		locker := redisclient.NewCaseLocker(client, nil,
			redisclient.WithLockTTL(100*time.Millisecond), redisclient.WithRetryCount(1))

		stale, err := locker.Acquire(ctx, "1700000000000002")
		require.NoError(t, err)
		time.Sleep(250 * time.Millisecond)

		current, err := locker.Acquire(ctx, "1700000000000002")
		require.NoError(t, err)

		err = stale(ctx)
		assert.True(t, errors.IsCode(err, errors.ErrCodeConflict))

		key := client.Key("lock", "case", "1700000000000002")
		n, err := client.GetUnderlyingClient().Exists(ctx, key).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		require.NoError(t, current(ctx))
	})

	t.Run("watchdog keeps the lock past its ttl", func(t *testing.T) {
		locker := redisclient.NewCaseLocker(client, nil,
			redisclient.WithLockTTL(150*time.Millisecond), redisclient.WithWatchdog(true), redisclient.WithRetryCount(1))

		release, err := locker.Acquire(ctx, "1700000000000003")
		require.NoError(t, err)
		time.Sleep(400 * time.Millisecond)

		_, err = locker.Acquire(ctx, "1700000000000003")
		assert.True(t, errors.IsCode(err, errors.ErrCodeConflict))
		require.NoError(t, release(ctx))
	})
}

//Personal.AI order the ending
