//go:build integration

package infra

// Runs the view cache against a real Redis started with testcontainers.
// Run with: go test -tags integration ./internal/infra/... -v

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func startRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(rdC) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	return url
}

func TestViewCache_RoundTrip(t *testing.T) {
	ctx := context.Background()
	rdb, err := NewRedis(ctx, startRedis(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewViewCache(rdb, time.Minute, NewCircuitBreaker(DefaultCBConfig()))

	_, err = c.Get(ctx, "fp:choropleth:orders")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, "closed", c.Status(), "a miss is not a failure")

	require.NoError(t, c.Set(ctx, "fp:choropleth:orders", []byte(`{"view":"orders"}`)))
	got, err := c.Get(ctx, "fp:choropleth:orders")
	require.NoError(t, err)
	assert.JSONEq(t, `{"view":"orders"}`, string(got))

	ttl, err := rdb.TTL(ctx, "opsdash:view:fp:choropleth:orders").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)
}
