package cmd

import (
	"context"
	"fmt"

	"github.com/Yates-Labs/sage/internal/feedback"
	"github.com/Yates-Labs/sage/internal/orchestrator"
	"github.com/spf13/cobra"
)

var statsFeedbackPath string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show corpus and feedback statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVar(&statsFeedbackPath, "feedback-path", "data/feedback", "Feedback database directory")
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if _, err := requireEnv("OPENAI_API_KEY"); err != nil {
		return err
	}

	pipeline, err := orchestrator.New(ctx, orchestrator.DefaultConfig())
	if err != nil {
		return fmt.Errorf("%s Failed to create pipeline: %w", errorStyle.Render("Error:"), err)
	}
	defer pipeline.Close()

	stats, err := pipeline.Stats(ctx)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Corpus"))
	fmt.Println(bodyStyle.Render(fmt.Sprintf("  collection: %s", stats.Collection)))
	fmt.Println(bodyStyle.Render(fmt.Sprintf("  embedder:   %s", stats.EmbedderModel)))
	fmt.Println(bodyStyle.Render(fmt.Sprintf("  llm:        %s", stats.LLMModel)))
	for key, value := range stats.Store {
		fmt.Println(bodyStyle.Render(fmt.Sprintf("  %s: %v", key, value)))
	}

	store, err := feedback.Open(feedback.Config{Path: statsFeedbackPath})
	if err != nil {
		fmt.Println(mutedStyle.Render("\n(no feedback store at " + statsFeedbackPath + ")"))
		return nil
	}
	defer store.Close()

	fb, err := store.Stats()
	if err != nil {
		return fmt.Errorf("%s Failed to read feedback stats: %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Feedback"))
	fmt.Println(bodyStyle.Render(fmt.Sprintf("  total:   %d", fb.Total)))
	fmt.Println(bodyStyle.Render(fmt.Sprintf("  average: %.2f", fb.AverageRating)))
	for category, count := range fb.ByCategory {
		fmt.Println(bodyStyle.Render(fmt.Sprintf("  %s: %d", category, count)))
	}
	fmt.Println()

	return nil
}
