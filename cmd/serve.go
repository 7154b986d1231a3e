package cmd

import (
	"context"
	"fmt"

	"github.com/Yates-Labs/sage/internal/api"
	"github.com/Yates-Labs/sage/internal/feedback"
	"github.com/Yates-Labs/sage/internal/orchestrator"
	"github.com/spf13/cobra"
)

var (
	serveAddr         string
	serveFeedbackPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the guidance API over HTTP",
	Long: `Start the HTTP API: guidance, wellness support, passage search, stats,
and feedback collection.

Required environment variables:
  OPENAI_API_KEY     - OpenAI API key for embeddings and generation
  MILVUS_ADDRESS     - Milvus server address (default: localhost:19530)

Examples:
  sage serve
  sage serve --addr :9000 --feedback-path /var/lib/sage/feedback`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveFeedbackPath, "feedback-path", "data/feedback", "Feedback database directory")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if _, err := requireEnv("OPENAI_API_KEY"); err != nil {
		return err
	}

	pipeline, err := orchestrator.New(ctx, orchestrator.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Close()

	store, err := feedback.Open(feedback.Config{Path: serveFeedbackPath})
	if err != nil {
		return fmt.Errorf("failed to open feedback store: %w", err)
	}
	defer store.Close()

	server := api.NewServer(api.Config{
		Pipeline:   pipeline,
		Feedback:   store,
		Classifier: pipeline,
	})

	fmt.Println(successStyle.Render("✓ Sage API listening on " + serveAddr))
	return server.Run(serveAddr)
}
