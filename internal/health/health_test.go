package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakeDB struct{ down atomic.Bool }

func (f *fakeDB) Ping(context.Context) error {
	if f.down.Load() {
		return errors.New("db down")
	}
	return nil
}

func TestCheckTracksDatabase(t *testing.T) {
	db := &fakeDB{}
	c := New(db, time.Hour, zap.NewNop())
	ctx := context.Background()

	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, st)

	require.NoError(t, c.Check(ctx))
	st, _ = c.Status(ctx)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, st)

	db.down.Store(true)
	assert.Error(t, c.Check(ctx))
	st, _ = c.Status(ctx)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, st)
}

func TestShutdownSticks(t *testing.T) {
	c := New(&fakeDB{}, time.Hour, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, c.Check(ctx))
	c.Shutdown()
	_ = c.Check(ctx)

	st, _ := c.Status(ctx)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, st)
}

func TestRunStopsWithContext(t *testing.T) {
	c := New(&fakeDB{}, time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		st, _ := c.Status(context.Background())
		return st == healthpb.HealthCheckResponse_SERVING
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}
}
