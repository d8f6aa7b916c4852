package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

func TestCollect_NoDependencies(t *testing.T) {
	result := (&Service{}).Collect(context.Background())
	assert.Equal(t, StatusIssue, result.Status)
	assert.Equal(t, "disconnected", result.Dependencies["database"].Status)
	assert.Equal(t, "disconnected", result.Dependencies["redis"].Status)
	assert.NotContains(t, result.Dependencies, "supabase")
	assert.Equal(t, 0, result.Traffic.TotalRequests)
}

func TestCollect_WithMiniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()
	svc := &Service{Rdb: rdb, DB: pinger{}}

	result := svc.Collect(ctx)
	assert.Equal(t, StatusOK, result.Status)
	assert.Equal(t, "connected", result.Dependencies["redis"].Status)
	assert.Equal(t, "100", result.Traffic.SuccessRate)
	assert.True(t, mr.Exists("health:global:start_time"))

	require.NoError(t, rdb.Set(ctx, "health:global:req_total", "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:req_errors", "2", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:res_time_total", "150.5", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:res_count", "10", 0).Err())
	require.NoError(t, rdb.Set(ctx, "health:global:last_request", `{"path":"/functions/v1/promote-listing"}`, 0).Err())

	result = svc.Collect(ctx)
	assert.Equal(t, 10, result.Traffic.TotalRequests)
	assert.Equal(t, 2, result.Traffic.FailedCount)
	assert.Equal(t, 8, result.Traffic.SuccessCount)
	assert.Equal(t, "80.0", result.Traffic.SuccessRate)
	assert.Equal(t, "15.05", result.Traffic.AvgResponseTime)
	assert.Equal(t, "/functions/v1/promote-listing", result.Traffic.LastRequest.(map[string]interface{})["path"])
}

func TestCollect_DatabaseError(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	result := (&Service{Rdb: rdb, DB: pinger{err: errors.New("down")}}).Collect(context.Background())
	assert.Equal(t, StatusIssue, result.Status)
	assert.Equal(t, "error", result.Dependencies["database"].Status)
}

func TestCollect_SupabaseReachability(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := (&Service{SupabaseURL: srv.URL}).Collect(context.Background())
	assert.Equal(t, "reachable", result.Dependencies["supabase"].Status)
	assert.NotNil(t, result.Dependencies["supabase"].PingMs)

	srv.Close()
	result = (&Service{SupabaseURL: srv.URL}).Collect(context.Background())
	assert.Equal(t, "unreachable", result.Dependencies["supabase"].Status)
}
