package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Yates-Labs/sage/internal/orchestrator"
	"github.com/Yates-Labs/sage/internal/story"
	"github.com/spf13/cobra"
)

var (
	askTopK      int
	askSkipStory bool
	askVerbose   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask for guidance on a problem",
	Long: `Ask a life question and receive guidance grounded in the indexed corpus,
plus a retold story from the sources when the retrieved passages contain one.

Required environment variables:
  OPENAI_API_KEY     - OpenAI API key for embeddings and generation
  MILVUS_ADDRESS     - Milvus server address (default: localhost:19530)

Examples:
  sage ask "How do I deal with the fear of losing my job?"
  sage ask "Why did my friendship end?" --skip-story
  sage ask "How do I let go of anger?" --topk 8 --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().IntVar(&askTopK, "topk", 5, "Number of passages to retrieve for context")
	askCmd.Flags().BoolVar(&askSkipStory, "skip-story", false, "Skip the story stages (guidance only, one model call)")
	askCmd.Flags().BoolVar(&askVerbose, "verbose", false, "Show detailed progress")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]
	ctx := context.Background()

	if _, err := requireEnv("OPENAI_API_KEY"); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Question:"))
	fmt.Println(accentStyle.Render(question))
	fmt.Println()

	if askVerbose {
		fmt.Println(mutedStyle.Render("→ Initializing pipeline..."))
	}

	config := orchestrator.DefaultConfig()
	config.TopK = askTopK

	pipeline, err := orchestrator.New(ctx, config)
	if err != nil {
		return fmt.Errorf("%s Failed to create pipeline: %w", errorStyle.Render("Error:"), err)
	}
	defer pipeline.Close()

	if askVerbose {
		fmt.Println(successStyle.Render("✓ Pipeline initialized"))
		fmt.Println(mutedStyle.Render("→ Retrieving passages and generating guidance..."))
	}

	resp, err := pipeline.Guide(ctx, orchestrator.Request{Problem: question, SkipStory: askSkipStory})
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	fmt.Println(headerStyle.Render("Guidance:"))
	fmt.Println()
	fmt.Println(bodyStyle.Render(strings.TrimSpace(resp.Guidance)))
	fmt.Println()

	if resp.Story != nil {
		title := resp.Story.Star.Title
		if title == "" {
			title = "A story from the sources"
		}
		fmt.Println(headerStyle.Render("Story: " + title))
		if resp.Story.Star.SourceCitation != "" {
			fmt.Println(mutedStyle.Render("from " + resp.Story.Star.SourceCitation))
		}
		fmt.Println()
		fmt.Println(bodyStyle.Render(strings.TrimSpace(resp.Story.Narrative)))
		fmt.Println()
		if resp.Story.Corrected && askVerbose {
			fmt.Println(mutedStyle.Render("(narrative was fact-checked and corrected against the sources)"))
		}
	} else if !askSkipStory && askVerbose {
		reason := string(resp.Eligibility.Reason)
		if resp.Outcome == story.OutcomeNoStory && reason != "" && reason != string(story.ReasonOK) {
			fmt.Println(mutedStyle.Render("No story told (" + reason + ")"))
		} else {
			fmt.Println(mutedStyle.Render("No story found in the retrieved passages"))
		}
		fmt.Println()
	}

	return nil
}
