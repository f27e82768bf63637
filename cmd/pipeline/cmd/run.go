package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"smj-graphpipeline/internal/graph"
	"smj-graphpipeline/internal/pipeline"
	"smj-graphpipeline/internal/progress"
)

var (
	workersFlag   int
	yearStartFlag int
	yearEndFlag   int
	noResumeFlag  bool
	modelFlag     string
	onlyStageFlag string
)

// stageFromFlag maps the --only-stage flag to a pipeline.Stage, rejecting
// anything but the four named values.
func stageFromFlag(v string) (pipeline.Stage, error) {
	switch v {
	case "", "all":
		return pipeline.StageAll, nil
	case "extract":
		return pipeline.StageExtract, nil
	case "normalize":
		return pipeline.StageNormalize, nil
	case "ingest":
		return pipeline.StageIngest, nil
	default:
		return "", fmt.Errorf("--only-stage must be one of all|extract|normalize|ingest, got %q", v)
	}
}

// runPipeline implements the default `pipeline <corpus_root> [...]`
// invocation (§6.4): run the full worker pool over the discovered corpus
// and report an exit code reflecting whether any paper failed.
func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cfgFile)
	if err != nil {
		return fail(exitConfigError, err)
	}

	if len(args) == 1 {
		cfg.Corpus.Root = args[0]
	}
	if workersFlag > 0 {
		cfg.Performance.Workers = workersFlag
	}
	if yearStartFlag > 0 {
		cfg.Corpus.YearStart = yearStartFlag
	}
	if yearEndFlag > 0 {
		cfg.Corpus.YearEnd = yearEndFlag
	}
	if noResumeFlag {
		cfg.Corpus.Resume = false
	}
	if modelFlag != "" {
		cfg.LLM.PrimaryModel = modelFlag
	}
	stage, err := stageFromFlag(onlyStageFlag)
	if err != nil {
		return fail(exitConfigError, err)
	}

	if cfg.Corpus.Root == "" {
		return fail(exitConfigError, fmt.Errorf("cmd: corpus root is required (positional argument or CORPUS_ROOT env var)"))
	}
	if err := cfg.Validate(); err != nil {
		return fail(exitConfigError, err)
	}

	ctx, stop := notifyContext(cmd.Context())
	defer stop()

	store, err := progress.Load(cfg.Progress.ProgressPath, cfg.Progress.StatsPath)
	if err != nil {
		return fail(exitConfigError, fmt.Errorf("cmd: failed to load progress store: %w", err))
	}
	store.SetCheckpointBatch(cfg.Performance.CheckpointBatch)

	var graphClient *graph.Client
	if stage == pipeline.StageAll || stage == pipeline.StageIngest {
		graphClient, err = graph.Connect(ctx, cfg.Graph)
		if err != nil {
			return fail(exitConfigError, fmt.Errorf("cmd: failed to connect to graph store: %w", err))
		}
		defer func() {
			if cerr := graphClient.Close(context.Background()); cerr != nil {
				log.Printf("[ERROR] cmd: failed to close graph client: %v", cerr)
			}
		}()
		if err := graphClient.EnsureSchema(ctx); err != nil {
			return fail(exitConfigError, fmt.Errorf("cmd: failed to apply graph schema: %w", err))
		}
	}

	runner, err := pipeline.New(*cfg, graphClient, store, stage)
	if err != nil {
		return fail(exitConfigError, err)
	}
	defer func() {
		if cerr := runner.Close(context.Background()); cerr != nil {
			log.Printf("[ERROR] cmd: failed to close pipeline runner: %v", cerr)
		}
	}()

	counters, runErr := runner.Run(ctx)
	if perr := store.Persist(); perr != nil {
		log.Printf("[ERROR] cmd: failed to persist progress: %v", perr)
	}
	if serr := store.PersistStats(); serr != nil {
		log.Printf("[ERROR] cmd: failed to persist stats: %v", serr)
	}

	snap := counters.Snapshot()
	fmt.Printf("pipeline: processed=%d failed=%d skipped=%d\n", snap.Processed, snap.Failed, snap.Skipped)

	if ctx.Err() != nil {
		return fail(exitCancelled, nil)
	}
	if runErr != nil {
		return fail(exitConfigError, runErr)
	}
	if snap.Failed > 0 {
		return fail(exitPartialFailure, nil)
	}
	return nil
}
