package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/readhacker/readhacker/internal/fetch"
	"github.com/readhacker/readhacker/internal/gemini"
	"github.com/readhacker/readhacker/internal/models"
	"github.com/readhacker/readhacker/internal/normalize"
	"github.com/readhacker/readhacker/internal/ollama"
	"github.com/readhacker/readhacker/internal/openai"
	"github.com/readhacker/readhacker/internal/providers"
	"github.com/readhacker/readhacker/internal/schema"
)

type Service struct{}

func NewService() *Service {
	return &Service{}
}

// Request carries the user input for one extraction run.
type Request struct {
	BookTitle       string
	AuthorName      string
	SchemaVariant   string
	Provider        string
	Model           string
	ReasoningEffort string
	WebSearch       bool
}

// Outcome is what one extraction run produced: the tagged normalization
// result plus the provider call details the caller may want to display.
type Outcome struct {
	Result      normalize.Result
	Provider    string
	Model       string
	RawResponse string
	Elapsed     time.Duration
}

// ResolvedEntity is the first stage of the two-step pipeline: the model's
// identification of the canonical work behind a possibly fuzzy user query.
type ResolvedEntity struct {
	CanonicalTitle  string `json:"canonical_title"`
	CanonicalAuthor string `json:"canonical_author"`
	Confidence      string `json:"confidence"`
	Notes           string `json:"notes,omitempty"`
}

// FetchMetadata runs the single-step pipeline: build a prompt embedding the
// target schema, call the provider with retry, then normalize and validate
// the response. A returned error means the fetch itself failed after
// retries; data-shape failures come back inside the Outcome instead.
func (s *Service) FetchMetadata(ctx context.Context, req Request) (*Outcome, error) {
	desc, err := schema.Lookup(req.SchemaVariant)
	if err != nil {
		return nil, err
	}

	providerName, model, provider, err := s.resolveProvider(req.Provider, req.Model)
	if err != nil {
		return nil, err
	}

	config := providers.Config{
		Model:           model,
		Temperature:     0,
		SystemPrompt:    metadataSystemPrompt,
		Prompt:          buildMetadataPrompt(req.BookTitle, req.AuthorName, desc),
		ReasoningEffort: req.ReasoningEffort,
		WebSearch:       req.WebSearch,
		JSONOutput:      true,
	}

	start := time.Now()
	raw, err := fetch.New(provider).ExtractText(ctx, config)
	elapsed := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata: %w", err)
	}

	result := normalize.Run(raw, desc)
	slog.Info("Fetched metadata",
		"provider", providerName,
		"model", model,
		"variant", desc.Name,
		"status", result.Status,
		"elapsed", elapsed.Round(time.Millisecond))

	return &Outcome{
		Result:      result,
		Provider:    providerName,
		Model:       model,
		RawResponse: raw,
		Elapsed:     elapsed,
	}, nil
}

// ResolveEntity runs the first stage of the two-step pipeline: identify the
// canonical title and author behind the user's query.
func (s *Service) ResolveEntity(ctx context.Context, req Request) (*ResolvedEntity, error) {
	providerName, model, provider, err := s.resolveProvider(req.Provider, req.Model)
	if err != nil {
		return nil, err
	}

	config := providers.Config{
		Model:           model,
		Temperature:     0,
		SystemPrompt:    resolveSystemPrompt,
		Prompt:          buildResolvePrompt(req.BookTitle, req.AuthorName),
		ReasoningEffort: req.ReasoningEffort,
		WebSearch:       req.WebSearch,
		JSONOutput:      true,
	}

	raw, err := fetch.New(provider).ExtractText(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entity: %w", err)
	}

	var entity ResolvedEntity
	if err := normalize.Decode(raw, &entity); err != nil {
		return nil, fmt.Errorf("failed to decode entity resolution response: %w", err)
	}
	if entity.CanonicalTitle == "" {
		return nil, fmt.Errorf("entity resolution returned no canonical title")
	}

	slog.Info("Resolved entity",
		"provider", providerName,
		"model", model,
		"title", entity.CanonicalTitle,
		"author", entity.CanonicalAuthor,
		"confidence", entity.Confidence)

	return &entity, nil
}

// ResolveAndExtract runs the two-step pipeline: entity resolution followed
// by metadata extraction against the resolved title and author.
func (s *Service) ResolveAndExtract(ctx context.Context, req Request) (*ResolvedEntity, *Outcome, error) {
	entity, err := s.ResolveEntity(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	resolved := req
	resolved.BookTitle = entity.CanonicalTitle
	resolved.AuthorName = entity.CanonicalAuthor

	outcome, err := s.FetchMetadata(ctx, resolved)
	if err != nil {
		return entity, nil, err
	}
	return entity, outcome, nil
}

// ResearchBook generates literary research notes for an extracted record.
// Invalid records are accepted: the caller decides whether best-effort data
// is good enough to research.
func (s *Service) ResearchBook(ctx context.Context, req Request, record map[string]any) (string, error) {
	providerName, model, provider, err := s.resolveProvider(req.Provider, req.Model)
	if err != nil {
		return "", err
	}

	prompt, err := buildResearchPrompt(req.BookTitle, record)
	if err != nil {
		return "", err
	}

	// Research notes are prose; JSON output mode stays off so the model
	// is free to answer in plain text.
	config := providers.Config{
		Model:           model,
		Temperature:     0.3,
		SystemPrompt:    researchSystemPrompt,
		Prompt:          prompt,
		ReasoningEffort: req.ReasoningEffort,
		WebSearch:       req.WebSearch,
	}

	notes, err := fetch.New(provider).ExtractText(ctx, config)
	if err != nil {
		return "", fmt.Errorf("failed to research book: %w", err)
	}

	slog.Info("Generated research notes", "provider", providerName, "model", model, "length", len(notes))
	return notes, nil
}

// CrossReference asks a second model pass to rate the confidence of each
// extracted field against known references.
func (s *Service) CrossReference(ctx context.Context, req Request, record map[string]any) (*models.ConfidenceReport, error) {
	providerName, model, provider, err := s.resolveProvider(req.Provider, req.Model)
	if err != nil {
		return nil, err
	}

	prompt, err := buildCrossReferencePrompt(req.BookTitle, record)
	if err != nil {
		return nil, err
	}

	config := providers.Config{
		Model:           model,
		Temperature:     0,
		SystemPrompt:    crossReferenceSystemPrompt,
		Prompt:          prompt,
		ReasoningEffort: req.ReasoningEffort,
		WebSearch:       req.WebSearch,
		JSONOutput:      true,
	}

	raw, err := fetch.New(provider).ExtractText(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to cross-reference record: %w", err)
	}

	var report models.ConfidenceReport
	if err := normalize.Decode(raw, &report); err != nil {
		return nil, fmt.Errorf("failed to decode confidence report: %w", err)
	}

	slog.Info("Cross-referenced record",
		"provider", providerName,
		"model", model,
		"overall", report.Overall,
		"fields", len(report.Fields))

	return &report, nil
}

// resolveProvider applies env-var defaults and returns the provider name,
// model and client to use for a call.
func (s *Service) resolveProvider(providerName, model string) (string, string, providers.Provider, error) {
	if providerName == "" {
		providerName = os.Getenv("READHACKER_PROVIDER")
		if providerName == "" {
			providerName = "openai"
		}
	}
	if model == "" {
		model = s.getDefaultModel(providerName)
	}

	switch providerName {
	case "openai":
		return providerName, model, openai.New(), nil
	case "ollama":
		return providerName, model, ollama.New(), nil
	case "gemini":
		return providerName, model, gemini.New(), nil
	default:
		return "", "", nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

func (s *Service) getDefaultModel(provider string) string {
	switch provider {
	case "openai":
		model := os.Getenv("OPENAI_MODEL")
		if model == "" {
			return "gpt-5.1-mini"
		}
		return model
	case "ollama":
		model := os.Getenv("OLLAMA_MODEL")
		if model == "" {
			return "mistral-small3.2:24b"
		}
		return model
	case "gemini":
		model := os.Getenv("GEMINI_MODEL")
		if model == "" {
			return "gemini-2.0-flash"
		}
		return model
	default:
		return ""
	}
}
