package health

import (
	"context"
	"testing"

	"cribz-gateway/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ ms int64 }

func (f *fakePinger) Ping(ctx context.Context) *int64 {
	return &f.ms
}

type downPinger struct{}

func (downPinger) Ping(ctx context.Context) *int64 { return nil }

func TestCollect_AllHealthy(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, rdb.Set(context.Background(), middleware.KeyReqTotal, "10", 0).Err())
	require.NoError(t, rdb.Set(context.Background(), middleware.KeyReqErrors, "1", 0).Err())

	res := Collect(context.Background(), rdb, nil, &fakePinger{ms: 12})
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t, "connected", res.Dependencies["redis"].Status)
	assert.Equal(t, "reachable", res.Dependencies["upstream"].Status)
	assert.Equal(t, "disconnected", res.Dependencies["database"].Status)

	assert.Equal(t, 10, res.Traffic.TotalRequests)
	assert.Equal(t, 1, res.Traffic.FailedCount)
	assert.Equal(t, 9, res.Traffic.SuccessCount)
	assert.Equal(t, "90.0", res.Traffic.SuccessRate)
}

func TestCollect_UpstreamDownDegradesStatus(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	res := Collect(context.Background(), rdb, nil, downPinger{})
	assert.Equal(t, "issue", res.Status)
	assert.Equal(t, "unreachable", res.Dependencies["upstream"].Status)
}

func TestCollect_NoRedis(t *testing.T) {
	res := Collect(context.Background(), nil, nil, downPinger{})
	assert.Equal(t, "issue", res.Status)
	assert.Equal(t, "disconnected", res.Dependencies["redis"].Status)
	assert.Equal(t, "100", res.Traffic.SuccessRate)
}
