package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Yates-Labs/sage/internal/orchestrator"
	"github.com/spf13/cobra"
)

var searchTopK int

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the indexed corpus",
	Long: `Run a plain similarity search over the indexed passages, without any
generation. Useful for inspecting what the pipeline would retrieve for a
question.

Examples:
  sage search "attachment to results"
  sage search "grief for a father" --topk 10`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchTopK, "topk", 5, "Number of passages to retrieve")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	ctx := context.Background()

	if _, err := requireEnv("OPENAI_API_KEY"); err != nil {
		return err
	}

	pipeline, err := orchestrator.New(ctx, orchestrator.DefaultConfig())
	if err != nil {
		return fmt.Errorf("%s Failed to create pipeline: %w", errorStyle.Render("Error:"), err)
	}
	defer pipeline.Close()

	passages, err := pipeline.SearchPassages(ctx, query, searchTopK)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	if len(passages) == 0 {
		fmt.Println(mutedStyle.Render("No passages found. Is the corpus indexed?"))
		return nil
	}

	fmt.Println()
	for i, p := range passages {
		locator := p.Work
		if p.Ref != "" {
			locator += " " + p.Ref
		}
		header := fmt.Sprintf("%d. %s  (score %.3f)", i+1, locator, p.Score)
		fmt.Println(headerStyle.Render(header))
		if p.Speaker != "" {
			fmt.Println(mutedStyle.Render("spoken by " + p.Speaker))
		}
		fmt.Println(bodyStyle.Render(strings.TrimSpace(p.Text)))
		fmt.Println()
	}

	return nil
}
