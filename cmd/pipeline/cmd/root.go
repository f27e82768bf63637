// Package cmd is the cobra command tree for the pipeline binary, following
// the pack's only cobra example (rcliao-briefly's cmd/cmd/root.go): a root
// command carrying the default action plus subcommands, a persistent
// --config flag resolved through viper before falling back to this
// project's own env-overlay config loader.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"smj-graphpipeline/internal/config"
)

// §6.4 exit codes.
const (
	exitSuccess        = 0
	exitConfigError    = 1
	exitPartialFailure = 2
	exitCancelled      = 130
)

// exitCodeErr lets a command body report a specific §6.4 exit code instead
// of cobra's default "any error means exit 1".
type exitCodeErr struct {
	code int
	err  error
}

func (e *exitCodeErr) Error() string {
	if e.err == nil {
		return ""
	}
	return e.err.Error()
}

func (e *exitCodeErr) Unwrap() error { return e.err }

func fail(code int, err error) error {
	return &exitCodeErr{code: code, err: err}
}

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "pipeline [corpus-root]",
	Short: "Extract, normalize, and ingest Strategic Management Journal PDFs into a knowledge graph",
	Long: `pipeline walks a corpus of YYYY-YYYY/YYYY_<id>.pdf research papers, runs each
through the multi-stage LLM extractor, normalizes and validates the
extracted entities, and ingests them as one atomic transaction per paper
against the configured graph store (§2, §4, §6.4).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPipeline,
}

// Execute runs the command tree and returns the process exit code (§6.4:
// 0 success, 1 configuration error, 2 partial failure, 130 cancelled).
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return exitSuccess
	}
	var ece *exitCodeErr
	if errors.As(err, &ece) {
		if ece.err != nil {
			fmt.Fprintln(os.Stderr, ece.err)
		}
		return ece.code
	}
	fmt.Fprintln(os.Stderr, err)
	return exitConfigError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "pipeline config file (JSON); defaults to env vars + built-in defaults")

	rootCmd.Flags().IntVar(&workersFlag, "workers", 0, "number of concurrent workers (default from config, §4.2)")
	rootCmd.Flags().IntVar(&yearStartFlag, "year-start", 0, "inclusive lower bound of publication_year to process (§4.1)")
	rootCmd.Flags().IntVar(&yearEndFlag, "year-end", 0, "inclusive upper bound of publication_year to process (§4.1)")
	rootCmd.Flags().BoolVar(&noResumeFlag, "no-resume", false, "ignore the progress store and reprocess every paper")
	rootCmd.Flags().StringVar(&modelFlag, "model", "", "override the primary LLM model name")
	rootCmd.Flags().StringVar(&onlyStageFlag, "only-stage", "all", "stop each paper after one phase: all|extract|normalize|ingest")

	rootCmd.AddCommand(computeRelationshipsCmd)
	rootCmd.AddCommand(generateEmbeddingsCmd)
}

// resolveConfig mirrors rcliao-briefly's initConfig: an explicit --config flag
// wins outright; otherwise viper searches the working directory and the
// user's home directory for a "pipeline.json" before falling back to this
// project's own Default()+env-overlay loader when no file is found at all.
func resolveConfig(explicitPath string) (*config.Config, error) {
	viper.SetConfigType("json")

	if explicitPath != "" {
		viper.SetConfigFile(explicitPath)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("cmd: failed to read config file %q: %w", explicitPath, err)
		}
		return config.LoadFromFile(viper.ConfigFileUsed())
	}

	viper.SetConfigName("pipeline")
	viper.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("cmd: failed to read config file: %w", err)
		}
		return config.Load()
	}
	fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	return config.LoadFromFile(viper.ConfigFileUsed())
}

// notifyContext wires the §5 "single cancellation signal propagated to all
// workers" requirement to SIGINT/SIGTERM.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
