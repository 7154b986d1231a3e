package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Yates-Labs/sage/internal/corpus"
	"github.com/Yates-Labs/sage/internal/orchestrator"
	"github.com/spf13/cobra"
)

var (
	indexDir     string
	indexRepo    string
	indexRelease string
	indexForce   bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Chunk and index a corpus into the vector store",
	Long: `Load a corpus of texts from a directory, a git repository, or the latest
GitHub release of a repository; chunk it into passages; and index the
passages into Milvus.

Corpus files may be .json (array of {work, ref, speaker, text} units) or
.txt/.md (one unit per paragraph).

Required environment variables:
  OPENAI_API_KEY     - OpenAI API key for embeddings
  MILVUS_ADDRESS     - Milvus server address (default: localhost:19530)
  GITHUB_TOKEN       - optional, for private release sources

Examples:
  sage index --dir ./texts
  sage index --repo https://github.com/user/scriptures
  sage index --release user/scriptures --force`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().StringVar(&indexDir, "dir", "", "Corpus directory")
	indexCmd.Flags().StringVar(&indexRepo, "repo", "", "Git repository path or URL")
	indexCmd.Flags().StringVar(&indexRelease, "release", "", "GitHub repository (owner/repo) to fetch the latest release from")
	indexCmd.Flags().BoolVar(&indexForce, "force", false, "Re-embed and re-index passages that already exist")
}

func corpusSource() (corpus.Source, error) {
	set := 0
	for _, flag := range []string{indexDir, indexRepo, indexRelease} {
		if flag != "" {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of --dir, --repo, or --release is required")
	}

	switch {
	case indexDir != "":
		return corpus.NewDirSource(indexDir), nil
	case indexRepo != "":
		return corpus.NewGitSource(indexRepo), nil
	default:
		owner, repo, err := corpus.ParseOwnerRepo(indexRelease)
		if err != nil {
			return nil, err
		}
		return corpus.NewReleaseSource(owner, repo, os.Getenv("GITHUB_TOKEN")), nil
	}
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if _, err := requireEnv("OPENAI_API_KEY"); err != nil {
		return err
	}

	source, err := corpusSource()
	if err != nil {
		return err
	}

	fmt.Println(mutedStyle.Render("→ Loading corpus..."))
	docs, err := source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("%s Failed to load corpus: %w", errorStyle.Render("Error:"), err)
	}
	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Loaded %d documents (version %s)", len(docs), source.Version())))

	chunker := corpus.NewChunker(corpus.DefaultChunkConfig())
	passages := chunker.Chunk(docs)
	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Chunked into %d passages", len(passages))))

	pipeline, err := orchestrator.New(ctx, orchestrator.DefaultConfig())
	if err != nil {
		return fmt.Errorf("%s Failed to create pipeline: %w", errorStyle.Render("Error:"), err)
	}
	defer pipeline.Close()

	fmt.Println(mutedStyle.Render("→ Embedding and indexing..."))
	if err := pipeline.IndexCorpus(ctx, passages, indexForce); err != nil {
		return fmt.Errorf("%s Failed to index corpus: %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("✓ Indexed %d passages", len(passages))))
	return nil
}
