// Command pipeline is the §6.4 CLI surface: it runs the extraction-
// normalization-ingestion pipeline over a PDF corpus, and carries the two
// post-hoc subcommands (compute-relationships, generate-embeddings) that
// operate on an already-ingested graph.
package main

import (
	"os"

	"smj-graphpipeline/cmd/pipeline/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
