package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/readhacker/readhacker/internal/extraction"
	"github.com/readhacker/readhacker/internal/normalize"
)

func newExtractCmd() *cobra.Command {
	var (
		title          string
		author         string
		variant        string
		provider       string
		model          string
		effort         string
		webSearch      bool
		resolve        bool
		research       bool
		crossReference bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Fetch, normalize and validate metadata for one book",
		Example: `  # Basic extraction
  readhacker extract --title "Sapiens"

  # Two-step pipeline with research notes
  readhacker extract --title "sapiens brief history" --resolve --research

  # Different schema variant and provider
  readhacker extract --title "Sapiens" --author "Yuval Noah Harari" --variant single-language --provider ollama`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				return fmt.Errorf("--title is required")
			}

			service := extraction.NewService()
			req := extraction.Request{
				BookTitle:       title,
				AuthorName:      author,
				SchemaVariant:   variant,
				Provider:        provider,
				Model:           model,
				ReasoningEffort: effort,
				WebSearch:       webSearch,
			}

			ctx := cmd.Context()

			if resolve {
				entity, err := service.ResolveEntity(ctx, req)
				if err != nil {
					return err
				}
				fmt.Printf("Resolved: %s by %s (confidence: %s)\n", entity.CanonicalTitle, entity.CanonicalAuthor, entity.Confidence)
				req.BookTitle = entity.CanonicalTitle
				req.AuthorName = entity.CanonicalAuthor
			}

			outcome, err := service.FetchMetadata(ctx, req)
			if err != nil {
				return err
			}

			printResult(outcome)

			if outcome.Result.Record != nil && research {
				notes, err := service.ResearchBook(ctx, req, outcome.Result.Record)
				if err != nil {
					return err
				}
				fmt.Printf("\nResearch notes:\n%s\n", notes)
			}

			if outcome.Result.Record != nil && crossReference {
				report, err := service.CrossReference(ctx, req, outcome.Result.Record)
				if err != nil {
					return err
				}
				fmt.Printf("\nConfidence: %s\n", report.Overall)
				for _, f := range report.Fields {
					fmt.Printf("  %-20s %-8s %s\n", f.Field, f.Confidence, f.Reason)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Book title (required)")
	cmd.Flags().StringVar(&author, "author", "", "Author name (optional)")
	cmd.Flags().StringVar(&variant, "variant", "", "Schema variant (default: readhacker)")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider: openai, ollama, or gemini")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults per provider)")
	cmd.Flags().StringVar(&effort, "effort", "none", "Reasoning effort: none, low, medium, or high")
	cmd.Flags().BoolVar(&webSearch, "web-search", false, "Enable the provider's web search tool")
	cmd.Flags().BoolVar(&resolve, "resolve", false, "Resolve the query to a canonical work first")
	cmd.Flags().BoolVar(&research, "research", false, "Generate literary research notes")
	cmd.Flags().BoolVar(&crossReference, "cross-reference", false, "Cross-reference the record for confidence")

	return cmd
}

func printResult(outcome *extraction.Outcome) {
	switch outcome.Result.Status {
	case normalize.StatusValid:
		fmt.Println("Metadata is valid according to the schema.")
	case normalize.StatusInvalid:
		fmt.Println("Metadata does NOT comply with the schema:")
		fmt.Println("  " + outcome.Result.Message)
	case normalize.StatusParseError:
		fmt.Println("Response was not valid JSON:")
		fmt.Println("  " + outcome.Result.Message)
		fmt.Println("\nRaw response:")
		fmt.Println(outcome.Result.RawText)
	}

	if outcome.Result.Record != nil {
		data, err := json.MarshalIndent(outcome.Result.Record, "", "  ")
		if err == nil {
			fmt.Println("\nExtracted metadata:")
			fmt.Println(string(data))
		}
	}

	fmt.Printf("\nFetch completed in %s using %s/%s\n",
		outcome.Elapsed.Round(10*time.Millisecond), outcome.Provider, outcome.Model)
}
