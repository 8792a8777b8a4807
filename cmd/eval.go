package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/readhacker/readhacker/internal/eval/dataset"
	"github.com/readhacker/readhacker/internal/eval/results"
	"github.com/readhacker/readhacker/internal/eval/run"
	"github.com/readhacker/readhacker/internal/extraction"
)

func newEvalCmd() *cobra.Command {
	var (
		datasetPath string
		variant     string
		provider    string
		model       string
		sampleSize  int
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate extraction accuracy against a reference catalog",
		Long: `Runs the extraction pipeline over a dataset of professionally cataloged
book records (Parquet or JSONL) and scores field agreement, reporting the
schema-validity rate and per-field accuracy. Results are written to the
evals/ directory as YAML.`,
		Example: `  # Evaluate 25 records with the default provider
  readhacker eval --dataset refs.parquet --sample-size 25

  # Evaluate against a local model
  readhacker eval --dataset refs.jsonl --provider ollama --concurrency 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if datasetPath == "" {
				return fmt.Errorf("--dataset is required")
			}

			records, err := dataset.NewLoader(datasetPath).Load()
			if err != nil {
				return fmt.Errorf("failed to load dataset: %w", err)
			}
			if len(records) == 0 {
				return fmt.Errorf("dataset %s contains no records", datasetPath)
			}

			summary := run.Execute(cmd.Context(), extraction.NewService(), records, run.Options{
				Provider:      provider,
				Model:         model,
				SchemaVariant: variant,
				SampleSize:    sampleSize,
				Concurrency:   concurrency,
			})

			return results.SaveToYAML(summary, datasetPath, sampleSize)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Path to reference dataset (.parquet or .jsonl)")
	cmd.Flags().StringVar(&variant, "variant", "", "Schema variant to validate against")
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider: openai, ollama, or gemini")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults per provider)")
	cmd.Flags().IntVar(&sampleSize, "sample-size", 0, "Limit the number of records evaluated (0 = all)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Number of concurrent extractions")

	return cmd
}
