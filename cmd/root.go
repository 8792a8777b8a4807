package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readhacker",
		Short: "Book metadata extraction tool with LLM-powered research",
		Long: `Readhacker fetches structured book metadata from hosted LLMs, then
normalizes and validates the response against a JSON Schema.

It supports several schema variants, a two-step entity resolution pipeline,
literary research notes, confidence cross-referencing, and an evaluation
harness for measuring extraction accuracy against reference catalogs.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newExtractCmd())
	cmd.AddCommand(newVariantsCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}
