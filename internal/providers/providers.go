package providers

import (
	"context"
	"fmt"
)

// Config represents the configuration for an LLM provider call
type Config struct {
	Model           string
	Temperature     float64
	Prompt          string
	SystemPrompt    string
	ReasoningEffort string // "none", "low", "medium" or "high"
	WebSearch       bool   // enable the provider's web search tool, if it has one
	JSONOutput      bool   // constrain the response to a JSON object; leave off for prose
}

// Provider defines the interface for an LLM provider
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}

// StatusError is returned when a provider API responds with a non-200
// status code. The retry layer inspects the code to classify the failure
// as transient or terminal.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("received non-200 status code: %d - %s", e.Code, e.Body)
}
