package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"smj-graphpipeline/internal/discovery"
)

func TestPushPopRoundTrip(t *testing.T) {
	q := New(2)
	ctx := context.Background()

	task := discovery.PaperTask{PaperID: "2001_a"}
	require.NoError(t, q.Push(ctx, task))

	got, ok := q.Pop(ctx)
	require.True(t, ok)
	require.Equal(t, task, got)
}

func TestPushBlocksWhenFullUntilContextCancelled(t *testing.T) {
	q := New(1)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, q.Push(context.Background(), discovery.PaperTask{PaperID: "2001_a"}))
	err := q.Push(ctx, discovery.PaperTask{PaperID: "2001_b"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPopReturnsFalseOnClosedDrainedQueue(t *testing.T) {
	q := New(1)
	q.Close()
	_, ok := q.Pop(context.Background())
	require.False(t, ok)
}

func TestPoisonSentinel(t *testing.T) {
	require.True(t, IsPoison(Poison()))
	require.False(t, IsPoison(discovery.PaperTask{PaperID: "2001_real"}))
}

func TestLenReportsBufferedCount(t *testing.T) {
	q := New(4)
	require.Equal(t, 0, q.Len())
	require.NoError(t, q.Push(context.Background(), discovery.PaperTask{PaperID: "2001_a"}))
	require.Equal(t, 1, q.Len())
}
