// Package discovery walks a PDF corpus tree and produces a deterministically
// ordered list of paper tasks (§4.1): filenames must match `YYYY_<suffix>.pdf`,
// the leading year is authoritative for filtering by year range, and papers
// already present in the Progress Store's processed set are skipped when
// resuming. The filesystem-walk shape follows the teacher's own corpus-walk
// idiom in its embedding backfill tooling, generalized here to PDF discovery.
package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DefaultMaxAttempts is §4.1's per-task retry budget.
const DefaultMaxAttempts = 3

// filenamePattern matches the corpus's `YYYY_<suffix>.pdf` naming
// convention; the leading four digits are the authoritative publication
// year when the PDF itself declares none (§6.1).
var filenamePattern = regexp.MustCompile(`^(\d{4})_(.+)\.pdf$`)

// PaperTask is one unit of work the worker pool consumes (§4.1, §4.2).
type PaperTask struct {
	PaperID     string
	PDFPath     string
	Year        int
	Attempt     int
	MaxAttempts int
}

// Options configures a discovery run.
type Options struct {
	Root      string
	YearStart int // 0 means unbounded
	YearEnd   int // 0 means unbounded
	// Processed is the set of paper ids already recorded as completed by
	// the Progress Store; non-nil together with Resume=true excludes them.
	Processed map[string]bool
	Resume    bool
}

// Discover walks root, filters by name pattern and year range, excludes
// already-processed papers when resuming, and returns tasks sorted
// deterministically by filename (§4.1: "sorts deterministically by
// filename").
func Discover(opts Options) ([]PaperTask, error) {
	var tasks []PaperTask

	err := filepath.Walk(opts.Root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		name := info.Name()
		match := filenamePattern.FindStringSubmatch(name)
		if match == nil {
			return nil
		}

		year, convErr := strconv.Atoi(match[1])
		if convErr != nil {
			return nil
		}
		if opts.YearStart > 0 && year < opts.YearStart {
			return nil
		}
		if opts.YearEnd > 0 && year > opts.YearEnd {
			return nil
		}

		paperID := strings.TrimSuffix(name, ".pdf")
		if opts.Resume && opts.Processed != nil && opts.Processed[paperID] {
			return nil
		}

		tasks = append(tasks, PaperTask{
			PaperID:     paperID,
			PDFPath:     path,
			Year:        year,
			Attempt:     0,
			MaxAttempts: DefaultMaxAttempts,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovery: failed to walk corpus root %q: %w", opts.Root, err)
	}

	sort.Slice(tasks, func(i, j int) bool {
		return filepath.Base(tasks[i].PDFPath) < filepath.Base(tasks[j].PDFPath)
	})

	return tasks, nil
}

// Retry returns a copy of t with its attempt counter incremented, used by
// the worker pool to re-enqueue a transiently failed task (§4.1: "Failed
// tasks with attempt < max_attempts are re-enqueued").
func (t PaperTask) Retry() PaperTask {
	t.Attempt++
	return t
}

// Exhausted reports whether t has used up its retry budget (§4.1:
// "exceeding max_attempts marks the paper FAILED").
func (t PaperTask) Exhausted() bool {
	return t.Attempt >= t.MaxAttempts
}
