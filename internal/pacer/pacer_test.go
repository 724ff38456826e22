package pacer

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnlimited_NeverBlocks(t *testing.T) {
	p := Unlimited()
	start := time.Now()
	for i := 0; i < 1000; i++ {
		require.NoError(t, p.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, math.MaxFloat64, p.Limit())
}

func TestNew_SpacesCalls(t *testing.T) {
	p := New(20, 1)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wait(ctx))
	}
	// first call uses the burst token, the next two wait ~50ms each
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Equal(t, 20.0, p.Limit())
}

func TestWait_Cancelled(t *testing.T) {
	p := New(0.001, 1)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Wait(ctx)
	require.Error(t, err)
}

func TestNilPacer(t *testing.T) {
	var p *Pacer
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Wait(ctx), context.Canceled)
}

func TestNew_ClampsBurst(t *testing.T) {
	p := New(5, 0)
	require.NoError(t, p.Wait(context.Background()))
}
