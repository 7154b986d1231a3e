package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sage",
	Short: "Sage - Grounded guidance from sacred texts",
	Long: `Sage answers life questions with guidance grounded in a corpus of sacred
and devotional texts.

It retrieves the most relevant passages for a question, generates
empathetic guidance from them, and -- when the passages actually contain
one -- extracts and retells a story, fact-checked against the sources.`,
}

// Execute runs the root command
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Shared styling for command output.
var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F780FF")).Bold(true)
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BE9FD")).Italic(true)
	bodyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E9E9F4"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4")).Italic(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#50FA7B"))
)

// requireEnv returns the value of an environment variable or an error naming
// it, for commands that cannot run without it.
func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s environment variable is required", key)
	}
	return value, nil
}
