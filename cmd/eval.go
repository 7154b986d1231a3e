package cmd

import (
	"context"
	"fmt"

	"github.com/Yates-Labs/sage/internal/evals"
	"github.com/Yates-Labs/sage/internal/orchestrator"
	"github.com/spf13/cobra"
)

var (
	evalCases  string
	evalReport string
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run evaluation cases against the pipeline",
	Long: `Run scripted evaluation cases against the live pipeline and report which
checks failed: guidance length, forbidden phrases, required phrases, story
presence and attribution, and response time.

Examples:
  sage eval --cases evals/cases.json
  sage eval --cases evals/cases.json --report report.json`,
	Args: cobra.NoArgs,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&evalCases, "cases", "", "JSON file with evaluation cases (required)")
	evalCmd.Flags().StringVar(&evalReport, "report", "", "Write a JSON report to this path")
	evalCmd.MarkFlagRequired("cases")
}

func runEval(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if _, err := requireEnv("OPENAI_API_KEY"); err != nil {
		return err
	}

	cases, err := evals.LoadCases(evalCases)
	if err != nil {
		return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
	}

	pipeline, err := orchestrator.New(ctx, orchestrator.DefaultConfig())
	if err != nil {
		return fmt.Errorf("%s Failed to create pipeline: %w", errorStyle.Render("Error:"), err)
	}
	defer pipeline.Close()

	summary := evals.NewRunner(pipeline).Run(ctx, cases)

	fmt.Println()
	for _, result := range summary.Results {
		if result.Passed {
			fmt.Println(successStyle.Render(fmt.Sprintf("✓ %s (%.1fs)", result.CaseID, result.Duration.Seconds())))
			continue
		}
		fmt.Println(errorStyle.Render(fmt.Sprintf("✗ %s (%.1fs)", result.CaseID, result.Duration.Seconds())))
		for _, failure := range result.Failures {
			fmt.Println(mutedStyle.Render("    " + failure))
		}
	}
	fmt.Println()
	fmt.Println(headerStyle.Render(fmt.Sprintf("%d passed, %d failed", summary.Passed, summary.Failed)))

	if evalReport != "" {
		if err := evals.WriteReport(summary, evalReport); err != nil {
			return fmt.Errorf("%s %w", errorStyle.Render("Error:"), err)
		}
		fmt.Println(mutedStyle.Render("report written to " + evalReport))
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d evaluation case(s) failed", summary.Failed)
	}
	return nil
}
