// Package progress implements the durable Progress Store (§2, §4.9, §6.1):
// a pretty-printed JSON document of completed/failed paper ids and running
// statistics, written atomically (temp file + rename) on a cadence of every
// 5 completed papers, every 30s monitor tick, and at shutdown. On start,
// an existing progress file's completed set is loaded when resume=true so
// internal/discovery can filter already-processed papers.
package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FailedPaper records one paper that exhausted its retry budget (§4.1,
// §7 "the final stats JSON lists every failed paper with reason and
// attempt count").
type FailedPaper struct {
	PaperID   string    `json:"paper_id"`
	Reason    string    `json:"reason"`
	Attempts  int       `json:"attempts"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats is the running/final statistics document (§5, §6.1).
type Stats struct {
	Processed       int            `json:"processed"`
	Failed          int            `json:"failed"`
	Skipped         int            `json:"skipped"`
	EntityCounts    map[string]int `json:"entity_counts"`
	TotalDuration   time.Duration  `json:"total_duration_ns"`
	PhaseDurations  map[string]time.Duration `json:"phase_durations_ns"`
}

// Document is the full §4.9 Progress Store document persisted to disk.
type Document struct {
	Completed   []string      `json:"completed"`
	Failed      []FailedPaper `json:"failed"`
	Stats       Stats         `json:"stats"`
	LastUpdated time.Time     `json:"last_updated"`
}

// Store is the in-memory, mutex-guarded Progress Store (§5 "one writer at
// a time via mutex; writes are atomic on disk").
type Store struct {
	mu sync.Mutex

	progressPath string
	statsPath    string

	completed map[string]bool
	failed    []FailedPaper
	stats     Stats

	sinceLastWrite int
	checkpointBatch int
}

// defaultCheckpointBatch is §4.9's "every 5 completed papers" cadence.
const defaultCheckpointBatch = 5

// SetCheckpointBatch overrides the default checkpoint cadence, wiring
// config.PerformanceConfig.CheckpointBatch through to the store.
func (s *Store) SetCheckpointBatch(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n > 0 {
		s.checkpointBatch = n
	}
}

// Load opens the Progress Store at progressPath. If the file doesn't exist
// yet, an empty store is returned; no error is raised for a fresh run.
func Load(progressPath, statsPath string) (*Store, error) {
	s := &Store{
		progressPath: progressPath,
		statsPath:    statsPath,
		completed:    make(map[string]bool),
		stats:        Stats{EntityCounts: map[string]int{}, PhaseDurations: map[string]time.Duration{}},
		checkpointBatch: defaultCheckpointBatch,
	}

	data, err := os.ReadFile(progressPath)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("progress: failed to read %q: %w", progressPath, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("progress: failed to parse %q: %w", progressPath, err)
	}
	for _, id := range doc.Completed {
		s.completed[id] = true
	}
	s.failed = doc.Failed
	s.stats = doc.Stats
	if s.stats.EntityCounts == nil {
		s.stats.EntityCounts = map[string]int{}
	}
	if s.stats.PhaseDurations == nil {
		s.stats.PhaseDurations = map[string]time.Duration{}
	}
	return s, nil
}

// Processed reports the set of paper ids already recorded as completed,
// for internal/discovery's resume filter (§4.1, §4.9).
func (s *Store) Processed() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.completed))
	for k := range s.completed {
		out[k] = true
	}
	return out
}

// MarkCompleted records one successfully ingested paper and its per-phase
// durations, and persists the store if this is the 5th completion since
// the last write (§4.9 "every 5 completed papers").
func (s *Store) MarkCompleted(paperID string, phaseDurations map[string]time.Duration, entityCounts map[string]int) error {
	s.mu.Lock()
	s.completed[paperID] = true
	s.stats.Processed++
	for phase, d := range phaseDurations {
		s.stats.PhaseDurations[phase] += d
		s.stats.TotalDuration += d
	}
	for kind, n := range entityCounts {
		s.stats.EntityCounts[kind] += n
	}
	s.sinceLastWrite++
	shouldWrite := s.sinceLastWrite >= s.checkpointBatch
	if shouldWrite {
		s.sinceLastWrite = 0
	}
	s.mu.Unlock()

	if shouldWrite {
		return s.Persist()
	}
	return nil
}

// MarkFailed records one paper that exhausted its retry budget (§4.1, §7).
func (s *Store) MarkFailed(paperID, reason string, attempts int) error {
	s.mu.Lock()
	s.failed = append(s.failed, FailedPaper{
		PaperID:   paperID,
		Reason:    reason,
		Attempts:  attempts,
		Timestamp: time.Now().UTC(),
	})
	s.stats.Failed++
	s.mu.Unlock()
	return s.Persist()
}

// MarkSkipped increments the skip counter for a paper excluded by the
// resume filter or year range, without writing immediately.
func (s *Store) MarkSkipped() {
	s.mu.Lock()
	s.stats.Skipped++
	s.mu.Unlock()
}

// Snapshot returns a copy of the current document, for the monitor
// goroutine's progress log line (§4.2 "emits a progress snapshot every
// 30s") without holding the store's lock during I/O.
func (s *Store) Snapshot() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documentLocked()
}

func (s *Store) documentLocked() Document {
	completed := make([]string, 0, len(s.completed))
	for id := range s.completed {
		completed = append(completed, id)
	}
	return Document{
		Completed:   completed,
		Failed:      append([]FailedPaper{}, s.failed...),
		Stats:       s.stats,
		LastUpdated: time.Now().UTC(),
	}
}

// Persist atomically writes the progress document to disk (temp file +
// rename, §4.9 "Writes are atomic").
func (s *Store) Persist() error {
	s.mu.Lock()
	doc := s.documentLocked()
	s.mu.Unlock()
	return writeAtomicJSON(s.progressPath, doc)
}

// PersistStats atomically writes the final statistics document to its own
// path (§6.1 "high_performance_stats.json").
func (s *Store) PersistStats() error {
	s.mu.Lock()
	stats := s.stats
	s.mu.Unlock()
	return writeAtomicJSON(s.statsPath, struct {
		Stats       Stats     `json:"stats"`
		LastUpdated time.Time `json:"last_updated"`
	}{Stats: stats, LastUpdated: time.Now().UTC()})
}

func writeAtomicJSON(path string, v any) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("progress: failed to marshal %q: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".progress-*.tmp")
	if err != nil {
		return fmt.Errorf("progress: failed to create temp file in %q: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("progress: failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("progress: failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("progress: failed to rename temp file to %q: %w", path, err)
	}
	return nil
}
