package models

import "time"

// ExtractionSession represents one metadata extraction run: the user input,
// the provider call, and the normalized, validated result. Sessions are
// transient; they live in memory and are discarded when the server stops.
type ExtractionSession struct {
	ID                string            `json:"id"`
	BookTitle         string            `json:"book_title"`
	AuthorName        string            `json:"author_name,omitempty"`
	SchemaVariant     string            `json:"schema_variant"`
	Provider          string            `json:"provider,omitempty"`
	Model             string            `json:"model,omitempty"`
	Status            string            `json:"status"` // "valid", "invalid", "parse_error", "fetch_error"
	Record            map[string]any    `json:"record,omitempty"`
	ValidationMessage string            `json:"validation_message,omitempty"`
	RawResponse       string            `json:"raw_response,omitempty"`
	ResearchNotes     string            `json:"research_notes,omitempty"`
	Confidence        *ConfidenceReport `json:"confidence,omitempty"`
	ElapsedSeconds    float64           `json:"elapsed_seconds"`
	CreatedAt         time.Time         `json:"created_at"`
}

// ConfidenceReport is the result of cross-referencing an extracted record
// against a second model pass.
type ConfidenceReport struct {
	Overall string            `json:"overall"` // "high", "medium", "low"
	Fields  []FieldConfidence `json:"fields,omitempty"`
	Notes   string            `json:"notes,omitempty"`
}

// FieldConfidence rates one metadata field
type FieldConfidence struct {
	Field      string `json:"field"`
	Confidence string `json:"confidence"`
	Reason     string `json:"reason,omitempty"`
}
