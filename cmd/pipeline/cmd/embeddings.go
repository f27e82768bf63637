package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"smj-graphpipeline/internal/embeddinggen"
	"smj-graphpipeline/internal/embeddings"
	"smj-graphpipeline/internal/graph"
)

var generateEmbeddingsCmd = &cobra.Command{
	Use:   "generate-embeddings",
	Short: "Batch-encode Papers, Theories, Phenomena, Methods, and ResearchQuestions (§6.4)",
	Long: `generate-embeddings finds every Paper, Theory, Phenomenon, Method, and
ResearchQuestion node that doesn't carry an embedding yet, encodes its text
with the configured embedding model, and stores embedding, embedding_dim,
and embedding_model back onto the node.`,
	Args: cobra.NoArgs,
	RunE: runGenerateEmbeddings,
}

func runGenerateEmbeddings(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(cfgFile)
	if err != nil {
		return fail(exitConfigError, err)
	}
	if !cfg.Embeddings.Enabled {
		return fail(exitConfigError, fmt.Errorf("cmd: generate-embeddings requires EMBEDDINGS_ENABLED=true (or embeddings.enabled in --config)"))
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

	embedder := embeddings.NewVoyageEmbedder(cfg.Embeddings.APIKey, cfg.Embeddings.Model)

	stats, err := embeddinggen.Run(ctx, client, embedder)
	if err != nil {
		return fail(exitConfigError, err)
	}

	fmt.Println("generate-embeddings:")
	for _, label := range []string{"Paper", "Theory", "Phenomenon", "Method", "ResearchQuestion"} {
		fmt.Printf("  %-17s %d\n", label, stats.Counts[label])
	}
	if ctx.Err() != nil {
		return fail(exitCancelled, nil)
	}
	return nil
}
