package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"smj-graphpipeline/internal/discovery"
	"smj-graphpipeline/internal/queue"
)

func TestRunProcessesEveryTaskConcurrently(t *testing.T) {
	q := queue.New(8)
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Push(context.Background(), discovery.PaperTask{PaperID: fmt.Sprintf("2001_%d", i), MaxAttempts: 1}))
	}
	q.Close()

	var processed int64
	pool := New(3, q, func(ctx context.Context, task discovery.PaperTask) Result {
		atomic.AddInt64(&processed, 1)
		return Result{PhaseDurations: map[string]time.Duration{}}
	}, nil, time.Hour)

	require.NoError(t, pool.Run(context.Background()))
	require.EqualValues(t, 5, processed)
	require.Equal(t, 5, pool.Counters().Snapshot().Processed)
}

func TestRunRetriesTransientFailureThenSucceeds(t *testing.T) {
	q := queue.New(4)
	require.NoError(t, q.Push(context.Background(), discovery.PaperTask{PaperID: "2001_flaky", MaxAttempts: 3}))

	var attempts int64
	pool := New(1, q, func(ctx context.Context, task discovery.PaperTask) Result {
		n := atomic.AddInt64(&attempts, 1)
		if n == 1 {
			return Result{Err: fmt.Errorf("transient"), Retryable: true}
		}
		q.Close()
		return Result{}
	}, nil, time.Hour)

	require.NoError(t, pool.Run(context.Background()))
	require.EqualValues(t, 2, attempts)
	require.Equal(t, 1, pool.Counters().Snapshot().Processed)
	require.Equal(t, 0, pool.Counters().Snapshot().Failed)
}

func TestRunRecordsTerminalFailureWhenExhausted(t *testing.T) {
	q := queue.New(1)
	require.NoError(t, q.Push(context.Background(), discovery.PaperTask{PaperID: "2001_bad", Attempt: 3, MaxAttempts: 3}))
	q.Close()

	pool := New(1, q, func(ctx context.Context, task discovery.PaperTask) Result {
		return Result{Err: fmt.Errorf("permanent"), Retryable: true}
	}, nil, time.Hour)

	require.NoError(t, pool.Run(context.Background()))
	require.Equal(t, 1, pool.Counters().Snapshot().Failed)
	require.Len(t, pool.Counters().Errors, 1)
}
