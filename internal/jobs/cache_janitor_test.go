package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"clubdir/internal/cache"
	"clubdir/internal/clock"
	"clubdir/internal/store"
	"clubdir/internal/store/memstore"
)

func TestCacheJanitor_RunOnce(t *testing.T) {
	clk := clock.NewFake(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	c := cache.New(memstore.New(clk), clk, zap.NewNop())
	ctx := context.Background()

	_, err := c.All(ctx, "Clubs", store.Query{}, cache.Policy{TTL: time.Minute, Scope: cache.ScopePublic})
	require.NoError(t, err)
	_, err = c.All(ctx, "Events", store.Query{}, cache.Policy{TTL: time.Hour, Scope: cache.ScopePublic})
	require.NoError(t, err)

	j := NewCacheJanitor(c, time.Minute, 10*time.Minute, zap.NewNop())

	assert.Equal(t, 0, j.RunOnce(), "nothing is past grace yet")

	clk.Advance(5 * time.Minute)
	assert.Equal(t, 0, j.RunOnce(), "expired but still inside grace")

	clk.Advance(10 * time.Minute)
	assert.Equal(t, 1, j.RunOnce())
	assert.Equal(t, 1, c.Len())
}

func TestCacheJanitor_StartStops(t *testing.T) {
	c := cache.New(memstore.New(nil), nil, zap.NewNop())
	j := NewCacheJanitor(c, 10*time.Millisecond, 0, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start() did not return after cancel")
	}
}

func TestCacheJanitor_Disabled(t *testing.T) {
	c := cache.New(memstore.New(nil), nil, zap.NewNop())
	j := NewCacheJanitor(c, 0, 0, zap.NewNop())

	// Returns immediately without a ticker.
	j.Start(context.Background())
}
