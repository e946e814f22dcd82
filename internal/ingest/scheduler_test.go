package ingest

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/towerdash/internal/logging"
	"github.com/lox/towerdash/internal/models"
)

func TestScheduler_ReloadsOnTick(t *testing.T) {
	src := &countingSource{recs: []models.TowerRecord{{TowerID: "1"}}}
	memo := NewMemo(src, logging.Discard())
	clock := clockwork.NewFakeClock()

	s := NewScheduler(memo, time.Minute, logging.Discard())
	s.clock = clock
	var reloads atomic.Int32
	s.OnReload(func() { reloads.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	assert.Equal(t, int32(1), src.calls.Load())
	assert.True(t, memo.Loaded())

	clock.Advance(time.Minute)
	assert.Eventually(t, func() bool { return reloads.Load() == 2 }, time.Second, 5*time.Millisecond)

	src.fail.Store(true)
	clock.Advance(time.Minute)
	assert.Eventually(t, func() bool { return src.calls.Load() == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(2), reloads.Load())

	cancel()
	<-done
}

func TestScheduler_NoInterval(t *testing.T) {
	src := &countingSource{}
	s := NewScheduler(NewMemo(src, logging.Discard()), 0, logging.Discard())
	s.Run(context.Background())
	assert.Equal(t, int32(1), src.calls.Load())
}
