package run

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/readhacker/readhacker/internal/eval/dataset"
	"github.com/readhacker/readhacker/internal/extraction"
	"github.com/readhacker/readhacker/internal/normalize"
)

// Result is the outcome of evaluating one reference record.
type Result struct {
	Identifier        string
	Title             string
	Author            string
	Status            string
	ValidationMessage string
	RawResponse       string
	FieldScores       FieldScores
	OverallScore      float64
	Error             string
}

// Summary aggregates an evaluation run.
type Summary struct {
	Provider      string
	Model         string
	SchemaVariant string
	Results       []Result
	ValidCount    int
	InvalidCount  int
	ParseErrors   int
	FetchErrors   int
	MeanScore     float64
}

// Options controls an evaluation run.
type Options struct {
	Provider      string
	Model         string
	SchemaVariant string
	SampleSize    int
	Concurrency   int
}

// Execute runs the extraction pipeline over the reference records and
// scores each result against its catalog ground truth.
func Execute(ctx context.Context, service *extraction.Service, records []dataset.ReferenceRecord, opts Options) *Summary {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.SampleSize > 0 && opts.SampleSize < len(records) {
		records = records[:opts.SampleSize]
	}

	slog.Info("Starting evaluation run",
		"records", len(records),
		"provider", opts.Provider,
		"model", opts.Model,
		"variant", opts.SchemaVariant,
		"concurrency", opts.Concurrency)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, opts.Concurrency)
	resultsChan := make(chan Result, len(records))

	for i, record := range records {
		wg.Add(1)
		go func(idx int, ref dataset.ReferenceRecord) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			slog.Info("Processing record", "id", ref.Identifier, "progress", fmt.Sprintf("%d/%d", idx+1, len(records)))

			resultsChan <- evaluateRecord(ctx, service, ref, opts)
		}(i, record)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	summary := &Summary{
		Provider:      opts.Provider,
		Model:         opts.Model,
		SchemaVariant: opts.SchemaVariant,
		Results:       make([]Result, 0, len(records)),
	}

	var scoreTotal float64
	scored := 0
	for result := range resultsChan {
		summary.Results = append(summary.Results, result)
		switch normalize.Status(result.Status) {
		case normalize.StatusValid:
			summary.ValidCount++
		case normalize.StatusInvalid:
			summary.InvalidCount++
		case normalize.StatusParseError:
			summary.ParseErrors++
		default:
			summary.FetchErrors++
		}
		if result.Error == "" && result.Status != string(normalize.StatusParseError) {
			scoreTotal += result.OverallScore
			scored++
		}
	}
	if scored > 0 {
		summary.MeanScore = scoreTotal / float64(scored)
	}

	slog.Info("Evaluation run finished",
		"valid", summary.ValidCount,
		"invalid", summary.InvalidCount,
		"parse_errors", summary.ParseErrors,
		"fetch_errors", summary.FetchErrors,
		"mean_score", summary.MeanScore)

	return summary
}

func evaluateRecord(ctx context.Context, service *extraction.Service, ref dataset.ReferenceRecord, opts Options) Result {
	result := Result{
		Identifier: ref.Identifier,
		Title:      ref.QueryTitle(),
		Author:     ref.QueryAuthor(),
	}

	outcome, err := service.FetchMetadata(ctx, extraction.Request{
		BookTitle:     ref.QueryTitle(),
		AuthorName:    ref.QueryAuthor(),
		SchemaVariant: opts.SchemaVariant,
		Provider:      opts.Provider,
		Model:         opts.Model,
	})
	if err != nil {
		result.Status = "fetch_error"
		result.Error = err.Error()
		return result
	}

	result.Status = string(outcome.Result.Status)
	result.ValidationMessage = outcome.Result.Message
	result.RawResponse = outcome.RawResponse

	if outcome.Result.Record != nil {
		result.FieldScores = ScoreRecord(outcome.Result.Record, ref)
		result.OverallScore = result.FieldScores.Overall()
	}

	return result
}
