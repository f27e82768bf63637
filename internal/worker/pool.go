// Package worker implements the §4.2 worker pool: a fixed number of
// concurrent workers pulling tasks from the bounded queue, advancing a
// per-paper phase state machine, recording per-phase wall-clock under a
// shared mutex, and checkpointing through the Progress Store. Concurrency
// is bounded with golang.org/x/sync/semaphore and the monitor goroutine is
// supervised with golang.org/x/sync/errgroup, following the pack's
// (Tangerg-lynx, rcliao-briefly) use of x/sync for bounded fan-out rather
// than a hand-rolled worker-count channel, which is the one concurrency
// primitive this spec names a real library for (§2 DOMAIN STACK).
package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"smj-graphpipeline/internal/discovery"
	"smj-graphpipeline/internal/progress"
	"smj-graphpipeline/internal/queue"
)

// Phase names one step of the per-paper state machine (§4.2).
type Phase string

const (
	PhasePending     Phase = "PENDING"
	PhaseExtracting  Phase = "EXTRACTING"
	PhaseNormalizing Phase = "NORMALIZING"
	PhaseIngesting   Phase = "INGESTING"
	PhaseCompleted   Phase = "COMPLETED"
	PhaseFailed      Phase = "FAILED"
)

// Result is what Process returns for one paper: per-phase wall-clock,
// per-entity-kind counts written to the graph, and an error if the paper
// failed outright.
type Result struct {
	PhaseDurations map[string]time.Duration
	EntityCounts   map[string]int
	Err            error
	// Retryable distinguishes a transient failure (§7 "Transient I/O")
	// eligible for re-enqueue from a terminal one (corpus/schema errors
	// that would fail identically on retry).
	Retryable bool
}

// Process runs extractor->normalizer->validator->ingester for one task.
// internal/pipeline supplies the concrete implementation; worker only
// depends on this function shape so it stays decoupled from the extraction
// and graph packages.
type Process func(ctx context.Context, task discovery.PaperTask) Result

// Counters are the shared, mutex-guarded statistics §5 describes:
// "updates are small and fast, so lock contention is negligible."
type Counters struct {
	mu sync.Mutex

	Processed int
	Failed    int
	Skipped   int
	Errors    []string
}

func (c *Counters) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Processed++
}

func (c *Counters) recordFailure(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Failed++
	c.Errors = append(c.Errors, msg)
}

// Snapshot is a point-in-time copy of Counters for the monitor's log line.
type Snapshot struct {
	Processed int
	Failed    int
	Skipped   int
}

func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{Processed: c.Processed, Failed: c.Failed, Skipped: c.Skipped}
}

// Pool is the §4.2 worker pool.
type Pool struct {
	workers         int
	queue           *queue.Queue
	process         Process
	progress        *progress.Store
	monitorInterval time.Duration

	counters *Counters
	sem      *semaphore.Weighted
}

// New builds a Pool of n workers consuming from q, running fn per task,
// and checkpointing through store.
func New(n int, q *queue.Queue, fn Process, store *progress.Store, monitorInterval time.Duration) *Pool {
	if n < 1 {
		n = 1
	}
	if monitorInterval <= 0 {
		monitorInterval = 30 * time.Second
	}
	return &Pool{
		workers:         n,
		queue:           q,
		process:         fn,
		progress:        store,
		monitorInterval: monitorInterval,
		counters:        &Counters{},
		sem:             semaphore.NewWeighted(int64(n)),
	}
}

// Counters exposes the pool's shared statistics for callers that need a
// final snapshot (e.g. the CLI's exit-code decision, §6.4).
func (p *Pool) Counters() *Counters { return p.counters }

// Run drains the queue until it is closed, a poison task arrives, or ctx
// is cancelled (§5
// "Cancellation ... in-flight papers are allowed to finish their current
// phase and then the workers exit"), running up to p.workers tasks
// concurrently, with a monitor goroutine emitting a snapshot every
// p.monitorInterval (§4.2).
func (p *Pool) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(context.Background())

	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	g.Go(func() error {
		p.monitor(monitorCtx)
		return nil
	})

	var wg sync.WaitGroup
	var runErr error
	for {
		task, ok := p.queue.Pop(ctx)
		if !ok {
			break
		}
		if queue.IsPoison(task) {
			break
		}

		if err := p.sem.Acquire(gctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(t discovery.PaperTask) {
			defer wg.Done()
			defer p.sem.Release(1)
			p.runOne(ctx, t)
		}(task)

		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}
	}

	wg.Wait()
	stopMonitor()
	_ = g.Wait()

	if p.progress != nil {
		if err := p.progress.Persist(); err != nil {
			if runErr == nil {
				runErr = fmt.Errorf("worker: final progress persist failed: %w", err)
			}
		}
	}
	return runErr
}

// runOne advances one task through the phase state machine and records its
// outcome. A transient failure with remaining attempts is re-enqueued
// in-process rather than through the bounded queue, since re-pushing onto
// a possibly-closed queue from inside a worker would race its own
// shutdown.
func (p *Pool) runOne(ctx context.Context, task discovery.PaperTask) {
	log.Printf("[DEBUG] worker: %s entering %s", task.PaperID, PhaseExtracting)
	result := p.process(ctx, task)

	if result.Err == nil {
		p.counters.recordSuccess()
		if p.progress != nil {
			if err := p.progress.MarkCompleted(task.PaperID, result.PhaseDurations, result.EntityCounts); err != nil {
				log.Printf("[ERROR] worker: progress checkpoint failed for %s: %v", task.PaperID, err)
			}
		}
		log.Printf("[DEBUG] worker: %s reached %s", task.PaperID, PhaseCompleted)
		return
	}

	if result.Retryable && !task.Exhausted() {
		retry := task.Retry()
		log.Printf("[WARN] worker: %s failed transiently (attempt %d/%d): %v", task.PaperID, retry.Attempt, retry.MaxAttempts, result.Err)
		p.runOne(ctx, retry)
		return
	}

	p.counters.recordFailure(fmt.Sprintf("%s: %v", task.PaperID, result.Err))
	if p.progress != nil {
		if err := p.progress.MarkFailed(task.PaperID, result.Err.Error(), task.Attempt+1); err != nil {
			log.Printf("[ERROR] worker: progress failure-record failed for %s: %v", task.PaperID, err)
		}
	}
	log.Printf("[WARN] worker: %s reached %s: %v", task.PaperID, PhaseFailed, result.Err)
}

// monitor emits a progress snapshot every p.monitorInterval and persists
// the Progress Store on the same cadence (§4.2 "A separate monitoring task
// emits a progress snapshot every 30s and persists the Progress Store").
// It never exits on a task error; it only stops when ctx is cancelled.
func (p *Pool) monitor(ctx context.Context) {
	ticker := time.NewTicker(p.monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := p.counters.Snapshot()
			log.Printf("[INFO] worker: progress processed=%d failed=%d skipped=%d queue_len=%d",
				snap.Processed, snap.Failed, snap.Skipped, p.queue.Len())
			if p.progress != nil {
				if err := p.progress.Persist(); err != nil {
					log.Printf("[ERROR] worker: monitor persist failed: %v", err)
				}
			}
		}
	}
}
