package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedRunner fails with errs[i] on call i and succeeds once the script runs out.
type scriptedRunner struct {
	errs  []error
	calls atomic.Int64
}

func (r *scriptedRunner) Run(ctx context.Context) (Report, error) {
	i := int(r.calls.Add(1) - 1)
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	if i < len(r.errs) {
		return Report{Label: "failed"}, r.errs[i]
	}
	return Report{Label: "ok"}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Minute, nextBackoff(time.Minute, time.Hour))
	assert.Equal(t, time.Hour, nextBackoff(40*time.Minute, time.Hour))
	assert.Equal(t, time.Hour, nextBackoff(time.Hour, time.Hour))
}

func TestNewScheduler_CapsRetryBackoffAtInterval(t *testing.T) {
	s := NewScheduler(&scriptedRunner{}, time.Minute, time.Hour, clockwork.NewFakeClock(), discardLogger())
	assert.Equal(t, time.Minute, s.retryBackoff)
}

func TestScheduler_RetriesWithBackoffThenRunsOnInterval(t *testing.T) {
	boom := errors.New("warehouse unavailable")
	runner := &scriptedRunner{errs: []error{boom, boom}}
	clock := clockwork.NewFakeClock()
	s := NewScheduler(runner, time.Hour, time.Minute, clock, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	// First run fails; the scheduler waits the initial backoff.
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	assert.Equal(t, int64(1), runner.calls.Load())
	require.Error(t, s.CheckReadiness(ctx))
	last, ok := s.LastRun()
	require.True(t, ok)
	assert.ErrorIs(t, last.Err, boom)

	// Second run fails; backoff doubles.
	clock.Advance(time.Minute)
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	assert.Equal(t, int64(2), runner.calls.Load())

	// A minute is not enough any more.
	clock.Advance(time.Minute)
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	assert.Equal(t, int64(2), runner.calls.Load())

	// Third run succeeds and the service becomes ready.
	clock.Advance(time.Minute)
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	assert.Equal(t, int64(3), runner.calls.Load())
	require.NoError(t, s.CheckReadiness(ctx))
	last, ok = s.LastRun()
	require.True(t, ok)
	require.NoError(t, last.Err)
	assert.Equal(t, "ok", last.Report.Label)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestScheduler_NotReadyBeforeFirstRun(t *testing.T) {
	s := NewScheduler(&scriptedRunner{}, time.Hour, time.Minute, clockwork.NewFakeClock(), discardLogger())

	require.Error(t, s.CheckReadiness(context.Background()))
	_, ok := s.LastRun()
	assert.False(t, ok)
}

func TestScheduler_StopsWhenContextCancelled(t *testing.T) {
	runner := &scriptedRunner{}
	s := NewScheduler(runner, time.Hour, time.Minute, clockwork.NewFakeClock(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, s.Start(ctx))
	assert.Equal(t, int64(1), runner.calls.Load())
}
