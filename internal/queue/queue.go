// Package queue is the bounded task queue between discovery and the worker
// pool (§4.1, §4.2): a channel-backed FIFO capped at 2x the worker count so
// discovery blocks once the queue fills, bounding memory regardless of
// corpus size (§5 "Backpressure"). Shutdown is signaled with a poison task
// enqueued once per worker, the teacher's own channel-close-free shutdown
// idiom for a pool where an explicit sentinel is easier to reason about
// than closing a channel multiple producers might still write to.
package queue

import (
	"context"

	"smj-graphpipeline/internal/discovery"
)

// Queue is a bounded FIFO of PaperTasks.
type Queue struct {
	ch chan discovery.PaperTask
}

// New creates a Queue with the given capacity (§4.1: "capacity = 2x worker
// count").
func New(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{ch: make(chan discovery.PaperTask, capacity)}
}

// Push enqueues a task, blocking if the queue is full, or returning early
// if ctx is cancelled first.
func (q *Queue) Push(ctx context.Context, task discovery.PaperTask) error {
	select {
	case q.ch <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop dequeues the next task, blocking until one is available or ctx is
// cancelled. The second return value is false on context cancellation, and
// on a closed queue once its remaining buffered tasks have been returned.
func (q *Queue) Pop(ctx context.Context) (discovery.PaperTask, bool) {
	select {
	case task, ok := <-q.ch:
		return task, ok
	case <-ctx.Done():
		return discovery.PaperTask{}, false
	}
}

// Close closes the underlying channel once all producers are done pushing,
// so that workers draining the buffer eventually observe a closed channel
// instead of blocking forever.
func (q *Queue) Close() {
	close(q.ch)
}

// Len reports the number of tasks currently buffered, for monitoring.
func (q *Queue) Len() int {
	return len(q.ch)
}

// PoisonPaperID is the reserved paper id of the designated terminator a
// worker should stop on (§4.2 "Poison value ... enqueued N times on
// shutdown"). The poison task carries no PDFPath.
const PoisonPaperID = "\x00poison\x00"

// Poison is the sentinel task value pushed once per worker on shutdown.
func Poison() discovery.PaperTask {
	return discovery.PaperTask{PaperID: PoisonPaperID}
}

// IsPoison reports whether t is the shutdown sentinel.
func IsPoison(t discovery.PaperTask) bool {
	return t.PaperID == PoisonPaperID
}
