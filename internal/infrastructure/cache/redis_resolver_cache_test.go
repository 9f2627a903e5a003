package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}

func TestRedisResolverCache(t *testing.T) {
	client := startRedis(t)
	c := NewRedisResolverCache(client, "test:")
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	_, found, err := c.Get(ctx, "assistant:resolve:project:apollo")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "assistant:resolve:project:apollo", 7, time.Minute))

	id, found, err := c.Get(ctx, "assistant:resolve:project:apollo")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 7, id)

	ttl, err := client.TTL(ctx, "test:assistant:resolve:project:apollo").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)
}
