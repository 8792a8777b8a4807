package normalize

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonschema"

	"github.com/readhacker/readhacker/internal/schema"
)

// Status tags the outcome of a normalize-and-validate run.
type Status string

const (
	// StatusValid means the record parses and satisfies the schema.
	StatusValid Status = "valid"
	// StatusInvalid means the record parses but violates the schema. The
	// normalized record is still returned so callers can show best-effort
	// data alongside the warning.
	StatusInvalid Status = "invalid"
	// StatusParseError means the input is not a JSON object. Terminal for
	// this attempt; the raw text is preserved verbatim for display.
	StatusParseError Status = "parse_error"
)

// Result is the tagged outcome of Run. Exactly one of the three statuses
// applies; Record is nil only for parse errors.
type Result struct {
	Status  Status         `json:"status"`
	Record  map[string]any `json:"record,omitempty"`
	Message string         `json:"message,omitempty"`
	RawText string         `json:"raw_text,omitempty"`
}

// Run parses raw model output, normalizes shape mismatches against the
// descriptor's schema, and validates the result. It is a pure function:
// no retries, no side effects, deterministic for a given input.
func Run(rawText string, desc *schema.Descriptor) Result {
	record, err := Parse(rawText)
	if err != nil {
		return Result{
			Status:  StatusParseError,
			Message: err.Error(),
			RawText: rawText,
		}
	}

	Apply(record, desc)

	compiled, err := desc.Compile()
	if err != nil {
		return Result{
			Status:  StatusInvalid,
			Record:  record,
			Message: err.Error(),
		}
	}

	result := compiled.Validate(record)
	if result.Valid {
		return Result{Status: StatusValid, Record: record}
	}

	return Result{
		Status:  StatusInvalid,
		Record:  record,
		Message: violationMessage(result),
	}
}

// Parse strictly decodes the input as a single top-level JSON object,
// after stripping the markdown code fences LLMs like to wrap output in.
func Parse(rawText string) (map[string]any, error) {
	text := stripFences(rawText)

	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	record, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level JSON value must be an object, got %T", value)
	}
	return record, nil
}

// Decode strips code fences and strictly decodes the input into v. Used
// for auxiliary model payloads (entity resolution, confidence reports)
// that have a fixed shape and skip normalization.
func Decode(rawText string, v any) error {
	return json.Unmarshal([]byte(stripFences(rawText)), v)
}

// stripFences removes a surrounding markdown code block, if present.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// Apply normalizes the record in place against the descriptor: every field
// path the schema declares as an array has scalar string or lone object
// values wrapped into a one-element array, and descriptor-configured paths
// are deduplicated keeping first-seen order. Absent fields stay absent so
// the validator can report missing required fields. Apply is idempotent.
func Apply(record map[string]any, desc *schema.Descriptor) {
	dedupe := make(map[string]bool, len(desc.DedupePaths))
	for _, p := range desc.DedupePaths {
		dedupe[p] = true
	}
	for _, path := range desc.ArrayPaths() {
		coerceAt(record, strings.Split(path, "."), dedupe[path])
	}
}

// coerceAt walks the record to the field named by segs and wraps a scalar
// or object value there in a one-element array. Intermediate arrays are
// traversed element-wise so item-level array fields normalize too.
func coerceAt(node any, segs []string, dedupe bool) {
	obj, ok := node.(map[string]any)
	if !ok {
		return
	}

	if len(segs) > 1 {
		switch child := obj[segs[0]].(type) {
		case map[string]any:
			coerceAt(child, segs[1:], dedupe)
		case []any:
			for _, elem := range child {
				coerceAt(elem, segs[1:], dedupe)
			}
		}
		return
	}

	key := segs[0]
	value, exists := obj[key]
	if !exists {
		return
	}

	switch v := value.(type) {
	case string:
		obj[key] = []any{v}
	case map[string]any:
		obj[key] = []any{v}
	case []any:
		if dedupe {
			obj[key] = dedupeStrings(v)
		}
	}
	// Anything else (number, bool, null) is left for the validator to
	// report; wrapping it would hide a genuine structural error.
}

// dedupeStrings keeps the first occurrence of each distinct string while
// preserving order. Non-string elements pass through untouched.
func dedupeStrings(values []any) []any {
	seen := make(map[string]bool, len(values))
	out := make([]any, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if ok {
			if seen[s] {
				continue
			}
			seen[s] = true
		}
		out = append(out, v)
	}
	return out
}

// violationMessage renders schema violations as a single human-readable
// diagnostic, one clause per failing location in stable order. The flattened
// error map carries the instance path of each failure, so nested violations
// name the exact field that broke the constraint.
func violationMessage(result *jsonschema.EvaluationResult) string {
	details := result.GetDetailedErrors()
	locations := make([]string, 0, len(details))
	for loc := range details {
		locations = append(locations, loc)
	}
	sort.Strings(locations)

	parts := make([]string, 0, len(details))
	for _, loc := range locations {
		if loc == "" || loc == "/" {
			parts = append(parts, details[loc])
			continue
		}
		parts = append(parts, loc+": "+details[loc])
	}
	return strings.Join(parts, "; ")
}
