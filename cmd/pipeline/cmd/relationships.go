package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"smj-graphpipeline/internal/graph"
	"smj-graphpipeline/internal/relationships"
)

var computeRelationshipsCmd = &cobra.Command{
	Use:   "compute-relationships",
	Short: "Derive paper-to-paper relationships over an already-ingested graph (§6.4)",
	Long: `compute-relationships runs the post-hoc pass that creates USES_SAME_THEORY,
USES_SAME_METHOD, USES_SAME_VARIABLES, and TEMPORAL_SEQUENCE edges by
comparing every paper's primary theories, methods, and variables against
every other paper, and clusters papers into Topic nodes.`,
	Args: cobra.NoArgs,
	RunE: runComputeRelationships,
}

func runComputeRelationships(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cfgFile)
	if err != nil {
		return fail(exitConfigError, err)
	}
	if err := cfg.Validate(); err != nil {
		return fail(exitConfigError, err)
	}

	ctx, stop := notifyContext(cmd.Context())
	defer stop()

	client, err := graph.Connect(ctx, cfg.Graph)
	if err != nil {
		return fail(exitConfigError, fmt.Errorf("cmd: failed to connect to graph store: %w", err))
	}
	defer client.Close(context.Background())

	stats, err := relationships.Run(ctx, client)
	if err != nil {
		return fail(exitConfigError, err)
	}

	fmt.Printf(
		"compute-relationships: uses_same_theory=%d uses_same_method=%d uses_same_variable=%d temporal_sequence=%d topics=%d\n",
		stats.UsesSameTheory, stats.UsesSameMethod, stats.UsesSameVariable, stats.TemporalSequence, stats.Topics,
	)
	if ctx.Err() != nil {
		return fail(exitCancelled, nil)
	}
	return nil
}
