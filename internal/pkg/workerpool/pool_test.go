package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RunsEveryTask(t *testing.T) {
	ctx := context.Background()
	p := New(3, 10)
	results := p.Run(ctx)

	var ran atomic.Int32
	boom := errors.New("boom")
	for i := 0; i < 10; i++ {
		i := i
		require.NoError(t, p.Submit(ctx, fmt.Sprintf("k%d", i), func(context.Context) error {
			ran.Add(1)
			if i == 4 {
				return boom
			}
			return nil
		}))
	}
	p.Close()

	failed := map[string]error{}
	count := 0
	for r := range results {
		count++
		if r.Err != nil {
			failed[r.Key] = r.Err
		}
	}
	assert.Equal(t, 10, count)
	assert.Equal(t, int32(10), ran.Load())
	assert.Equal(t, map[string]error{"k4": boom}, failed)
}

func TestPool_SubmitHonoursContext(t *testing.T) {
	p := New(1, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Submit(ctx, "x", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
	p.Close()
	p.Close()
}

func TestPool_RateLimit(t *testing.T) {
	ctx := context.Background()
	p := New(4, 4)
	p.SetRateLimit(20)
	results := p.Run(ctx)

	start := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, p.Submit(ctx, fmt.Sprint(i), func(context.Context) error { return nil }))
	}
	p.Close()
	for range results {
	}
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}
