package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"smj-graphpipeline/internal/cache"
	"smj-graphpipeline/internal/config"
	"smj-graphpipeline/internal/discovery"
	"smj-graphpipeline/internal/embeddings"
	"smj-graphpipeline/internal/extractor"
	"smj-graphpipeline/internal/graph"
	"smj-graphpipeline/internal/llmclient"
	"smj-graphpipeline/internal/model"
	"smj-graphpipeline/internal/normalizer"
	"smj-graphpipeline/internal/pdftext"
	"smj-graphpipeline/internal/progress"
	"smj-graphpipeline/internal/queue"
	"smj-graphpipeline/internal/worker"
)

// Stage names the phase after which each paper stops, for the supplemented
// --only-stage flag (SPEC_FULL "Supplemented features"). Every stage runs
// extraction first; StageExtract stops after it, StageNormalize after
// normalization, and StageIngest runs the same full flow as StageAll.
type Stage string

const (
	StageAll        Stage = "all"
	StageExtract    Stage = "extract"
	StageNormalize  Stage = "normalize"
	StageIngest     Stage = "ingest"
)

// Runner holds every long-lived collaborator the pipeline needs, built once
// from config.Config and reused across every paper (§9 "initialize once,
// pass by reference").
type Runner struct {
	cfg config.Config

	llm       *llmclient.Client
	respCache *cache.ResponseCache
	pdfCache  *pdftext.Cache
	extractor *extractor.Extractor
	norm      *normalizer.Normalizer
	assembler *Assembler
	client    *graph.Client
	ingester  *graph.Ingester
	store     *progress.Store

	stage Stage
}

// New builds a Runner. The caller is responsible for calling Close when
// done. graphClient may be nil when stage is StageExtract or
// StageNormalize, since those stages never touch the graph store.
func New(cfg config.Config, graphClient *graph.Client, store *progress.Store, stage Stage) (*Runner, error) {
	if stage == "" {
		stage = StageAll
	}

	respCache, err := cache.Open(cfg.Cache.DiskPath, cfg.Cache.MemoryEntries, cfg.Cache.TTL)
	if err != nil {
		return nil, fmt.Errorf("pipeline: failed to open response cache: %w", err)
	}

	llm := llmclient.New(cfg.LLM)
	pdfCache := pdftext.NewCache()
	ext := extractor.New(cfg.LLM, llm, respCache, pdfCache)

	var embedder embeddings.Embedder
	if cfg.Embeddings.Enabled {
		embedder = embeddings.NewVoyageEmbedder(cfg.Embeddings.APIKey, cfg.Embeddings.Model)
	}
	norm := normalizer.New(embedder, cfg.Embeddings.Threshold)
	assembler := NewAssembler(norm)

	var ingester *graph.Ingester
	if graphClient != nil {
		ingester = graph.NewIngester(graphClient, graph.DefaultConflictStrategy)
	}

	return &Runner{
		cfg:       cfg,
		llm:       llm,
		respCache: respCache,
		pdfCache:  pdfCache,
		extractor: ext,
		norm:      norm,
		assembler: assembler,
		client:    graphClient,
		ingester:  ingester,
		store:     store,
		stage:     stage,
	}, nil
}

// Close releases the Runner's collaborator resources.
func (r *Runner) Close(ctx context.Context) error {
	var err error
	if r.respCache != nil {
		if cerr := r.respCache.Close(); cerr != nil {
			err = cerr
		}
	}
	if r.client != nil {
		if cerr := r.client.Close(ctx); cerr != nil {
			err = cerr
		}
	}
	return err
}

// Discover walks the configured corpus and returns the tasks for this run,
// applying the resume filter from the Progress Store (§4.1, §4.9).
func (r *Runner) Discover() ([]discovery.PaperTask, error) {
	var processed map[string]bool
	if r.cfg.Corpus.Resume && r.store != nil {
		processed = r.store.Processed()
	}
	return discovery.Discover(discovery.Options{
		Root:      r.cfg.Corpus.Root,
		YearStart: r.cfg.Corpus.YearStart,
		YearEnd:   r.cfg.Corpus.YearEnd,
		Processed: processed,
		Resume:    r.cfg.Corpus.Resume,
	})
}

// Run discovers the corpus, fills a bounded queue, and drains it with a
// worker pool sized per config (§4, §5). It returns the final counters so
// the CLI can report a summary and pick an exit code.
func (r *Runner) Run(ctx context.Context) (*worker.Counters, error) {
	tasks, err := r.Discover()
	if err != nil {
		return nil, err
	}

	q := queue.New(r.cfg.QueueCapacityOrDefault())
	pool := worker.New(r.cfg.Performance.Workers, q, r.Process, r.store, r.cfg.Performance.MonitorInterval)

	go func() {
		for _, t := range tasks {
			if err := q.Push(ctx, t); err != nil {
				return
			}
		}
		workers := r.cfg.Performance.Workers
		if workers < 1 {
			workers = 1
		}
		for i := 0; i < workers; i++ {
			if err := q.Push(ctx, queue.Poison()); err != nil {
				return
			}
		}
	}()

	if err := pool.Run(ctx); err != nil {
		return pool.Counters(), err
	}
	if r.store != nil {
		if err := r.store.PersistStats(); err != nil {
			log.Printf("[ERROR] pipeline: failed to persist final stats: %v", err)
		}
	}
	return pool.Counters(), nil
}

// Process is the worker.Process implementation: extract, normalize,
// validate, and (unless the configured stage stops earlier) ingest one
// paper, timing each phase (§4.2, §5).
func (r *Runner) Process(ctx context.Context, task discovery.PaperTask) worker.Result {
	durations := make(map[string]time.Duration)

	extractStart := time.Now()
	result, err := r.extractor.Extract(ctx, task.PaperID, task.PDFPath)
	durations[string(worker.PhaseExtracting)] = time.Since(extractStart)
	if err != nil {
		return worker.Result{
			PhaseDurations: durations,
			Err:            fmt.Errorf("extract: %w", err),
			Retryable:      isRetryable(err),
		}
	}
	if r.stage == StageExtract {
		return worker.Result{PhaseDurations: durations, EntityCounts: entityCounts(result)}
	}

	normalizeStart := time.Now()
	input := r.assembler.Assemble(ctx, result)
	durations[string(worker.PhaseNormalizing)] = time.Since(normalizeStart)
	if r.stage == StageNormalize {
		return worker.Result{PhaseDurations: durations, EntityCounts: ingestEntityCounts(input)}
	}

	if r.ingester == nil {
		return worker.Result{
			PhaseDurations: durations,
			Err:            fmt.Errorf("ingest: no graph client configured"),
			Retryable:      false,
		}
	}

	ingestStart := time.Now()
	decisions, err := r.ingester.IngestPaper(ctx, input)
	durations[string(worker.PhaseIngesting)] = time.Since(ingestStart)
	if err != nil {
		return worker.Result{
			PhaseDurations: durations,
			Err:            fmt.Errorf("ingest: %w", err),
			Retryable:      isRetryable(err),
		}
	}
	for _, d := range decisions {
		if d.Reason != "" {
			log.Printf("[DEBUG] pipeline: %s conflict decision %s/%s: %s", task.PaperID, d.EntityKind, d.Identity, d.Reason)
		}
	}

	return worker.Result{PhaseDurations: durations, EntityCounts: ingestEntityCounts(input)}
}

// isRetryable classifies a phase error as transient (§7 "Transient I/O"):
// anything other than the extractor's own insufficient-text classification,
// which would fail identically on retry since the PDF text never changes.
func isRetryable(err error) bool {
	return !errors.Is(err, extractor.ErrInsufficientText)
}

func entityCounts(r *model.ExtractionResult) map[string]int {
	return map[string]int{
		"authors":            len(r.Authors),
		"theories":           len(r.Theories),
		"phenomena":          len(r.Phenomena),
		"methods":            len(r.Methods),
		"variables":          len(r.Variables),
		"findings":           len(r.Findings),
		"contributions":      len(r.Contributions),
		"research_questions": len(r.ResearchQuestions),
		"citations":          len(r.Citations),
	}
}

func ingestEntityCounts(in graph.PaperIngestInput) map[string]int {
	return map[string]int{
		"authors":            len(in.Authors),
		"theories":           len(in.Theories),
		"phenomena":          len(in.Phenomena),
		"methods":            len(in.Methods),
		"software":           len(in.Software),
		"datasets":           len(in.Datasets),
		"variables":          len(in.Variables),
		"findings":           len(in.Findings),
		"contributions":      len(in.Contributions),
		"research_questions": len(in.ResearchQuestions),
		"citations":          len(in.Citations),
	}
}
