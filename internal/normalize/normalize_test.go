package normalize

import (
	"reflect"
	"strings"
	"testing"

	"github.com/readhacker/readhacker/internal/schema"
)

func mustLookup(t *testing.T, name string) *schema.Descriptor {
	t.Helper()
	desc, err := schema.Lookup(name)
	if err != nil {
		t.Fatalf("Failed to look up schema variant %s: %v", name, err)
	}
	return desc
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:  "plain object",
			input: `{"title": {"original": "Sapiens"}}`,
		},
		{
			name:  "object wrapped in json fences",
			input: "```json\n{\"title\": {\"original\": \"Sapiens\"}}\n```",
		},
		{
			name:  "object wrapped in bare fences",
			input: "```\n{\"title\": {\"original\": \"Sapiens\"}}\n```",
		},
		{
			name:    "truncated object",
			input:   `{"title": {`,
			wantErr: true,
		},
		{
			name:    "top-level array",
			input:   `[{"title": "Sapiens"}]`,
			wantErr: true,
		},
		{
			name:    "top-level string",
			input:   `"Sapiens"`,
			wantErr: true,
		},
		{
			name:    "free text",
			input:   "I could not find that book.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got record %v", record)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestApplyWrapsScalarsAndObjects(t *testing.T) {
	desc := mustLookup(t, "readhacker")

	record := map[string]any{
		"title": map[string]any{
			"original": "קיצור תולדות האנושות",
			"english":  "Sapiens: A Brief History of Humankind",
		},
		"authors":   map[string]any{"full_name": "Yuval Noah Harari"},
		"languages": "Hebrew",
		"sources":   "https://example.com",
	}
	Apply(record, desc)

	title := record["title"].(map[string]any)
	if want := []any{"Sapiens: A Brief History of Humankind"}; !reflect.DeepEqual(title["english"], want) {
		t.Errorf("Expected title.english %v, got %v", want, title["english"])
	}
	authors, ok := record["authors"].([]any)
	if !ok || len(authors) != 1 {
		t.Fatalf("Expected authors to be a one-element array, got %v", record["authors"])
	}
	if name := authors[0].(map[string]any)["full_name"]; name != "Yuval Noah Harari" {
		t.Errorf("Expected wrapped author to survive, got %v", name)
	}
	if want := []any{"Hebrew"}; !reflect.DeepEqual(record["languages"], want) {
		t.Errorf("Expected languages %v, got %v", want, record["languages"])
	}
	if want := []any{"https://example.com"}; !reflect.DeepEqual(record["sources"], want) {
		t.Errorf("Expected sources %v, got %v", want, record["sources"])
	}
}

func TestApplyLeavesAbsentFieldsAbsent(t *testing.T) {
	desc := mustLookup(t, "readhacker-lite")

	record := map[string]any{
		"title":   map[string]any{"original": "Sapiens"},
		"authors": []any{map[string]any{"full_name": "Yuval Noah Harari"}},
	}
	Apply(record, desc)

	for _, field := range []string{"editions", "languages", "genres", "sources"} {
		if _, exists := record[field]; exists {
			t.Errorf("Expected absent field %s to stay absent, got %v", field, record[field])
		}
	}
}

func TestApplyDedupesConfiguredPaths(t *testing.T) {
	desc := mustLookup(t, "biographical")

	record := map[string]any{
		"title": map[string]any{
			"original": "Sapiens",
			"english":  []any{"Sapiens", "Sapiens", "A Brief History of Humankind"},
		},
	}
	Apply(record, desc)

	title := record["title"].(map[string]any)
	want := []any{"Sapiens", "A Brief History of Humankind"}
	if !reflect.DeepEqual(title["english"], want) {
		t.Errorf("Expected deduplicated title.english %v, got %v", want, title["english"])
	}
}

func TestApplyDoesNotDedupeUnconfiguredVariants(t *testing.T) {
	desc := mustLookup(t, "readhacker")

	record := map[string]any{
		"title": map[string]any{
			"original": "Sapiens",
			"english":  []any{"Sapiens", "Sapiens"},
		},
	}
	Apply(record, desc)

	title := record["title"].(map[string]any)
	want := []any{"Sapiens", "Sapiens"}
	if !reflect.DeepEqual(title["english"], want) {
		t.Errorf("Expected duplicates preserved %v, got %v", want, title["english"])
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	desc := mustLookup(t, "biographical")

	record := map[string]any{
		"title": map[string]any{
			"original": "Sapiens",
			"english":  "Sapiens",
		},
		"authors": map[string]any{"full_name": "Yuval Noah Harari", "short_background": "Israeli historian"},
		"sources": "https://example.com",
	}
	Apply(record, desc)

	once := deepCopy(record)
	Apply(record, desc)

	if !reflect.DeepEqual(record, once) {
		t.Errorf("Expected normalization to be idempotent.\nFirst pass: %v\nSecond pass: %v", once, record)
	}
}

func TestApplyLeavesNonCoercibleValues(t *testing.T) {
	desc := mustLookup(t, "readhacker")

	// A number where an array belongs is a genuine structural error the
	// validator should report, not something to wrap.
	record := map[string]any{
		"languages": float64(42),
	}
	Apply(record, desc)

	if record["languages"] != float64(42) {
		t.Errorf("Expected non-coercible value untouched, got %v", record["languages"])
	}
}

func TestRunParseError(t *testing.T) {
	desc := mustLookup(t, "readhacker")

	raw := `{"title": {`
	result := Run(raw, desc)

	if result.Status != StatusParseError {
		t.Errorf("Expected status %s, got %s", StatusParseError, result.Status)
	}
	if result.RawText != raw {
		t.Errorf("Expected raw text preserved verbatim, got %q", result.RawText)
	}
	if result.Record != nil {
		t.Errorf("Expected no record for parse error, got %v", result.Record)
	}
	if result.Message == "" {
		t.Error("Expected a parser failure reason")
	}
}

func TestRunMissingRequiredField(t *testing.T) {
	desc := mustLookup(t, "single-language")

	result := Run(`{"title": {"original": "Sapiens"}, "language": "Hebrew", "sources": ["https://example.com"]}`, desc)

	if result.Status != StatusInvalid {
		t.Fatalf("Expected status %s, got %s (message: %s)", StatusInvalid, result.Status, result.Message)
	}
	if result.Record == nil {
		t.Error("Expected best-effort record to be returned for invalid input")
	}
	if !strings.Contains(result.Message, "authors") {
		t.Errorf("Expected violation message to name authors, got %q", result.Message)
	}
}

func TestRunNamesNestedViolationPath(t *testing.T) {
	desc := mustLookup(t, "readhacker-lite")

	result := Run(`{
		"title": {"original": "Sapiens"},
		"authors": [{"full_name": "Yuval Noah Harari"}, {"background": "historian"}]
	}`, desc)

	if result.Status != StatusInvalid {
		t.Fatalf("Expected status %s, got %s (message: %s)", StatusInvalid, result.Status, result.Message)
	}
	// The second author is the one missing full_name; the diagnostic must
	// point at it, not just say the top-level authors field failed.
	if !strings.Contains(result.Message, "authors") {
		t.Errorf("Expected violation message to name the authors field, got %q", result.Message)
	}
	if !strings.Contains(result.Message, "full_name") {
		t.Errorf("Expected violation message to name the missing full_name property, got %q", result.Message)
	}
}

func TestRunValidRoundTrip(t *testing.T) {
	desc := mustLookup(t, "single-language")

	raw := `{
		"title": {"original": "Sapiens", "english": ["Sapiens"]},
		"authors": [{"full_name": "Yuval Noah Harari"}],
		"language": "Hebrew",
		"publication_date": "2011",
		"sources": ["https://example.com"]
	}`
	result := Run(raw, desc)

	if result.Status != StatusValid {
		t.Fatalf("Expected status %s, got %s (message: %s)", StatusValid, result.Status, result.Message)
	}

	expected, err := Parse(raw)
	if err != nil {
		t.Fatalf("Failed to parse fixture: %v", err)
	}
	if !reflect.DeepEqual(result.Record, expected) {
		t.Errorf("Expected already-conformant record unchanged.\nWant: %v\nGot:  %v", expected, result.Record)
	}
}

func TestRunNormalizesScalarShapes(t *testing.T) {
	desc := mustLookup(t, "single-language")

	raw := `{
		"title": {"original": "Sapiens", "english": "Sapiens"},
		"authors": {"full_name": "Yuval Noah Harari"},
		"language": "Hebrew",
		"publication_date": "2011",
		"sources": "https://example.com"
	}`
	result := Run(raw, desc)

	if result.Status != StatusValid {
		t.Fatalf("Expected status %s, got %s (message: %s)", StatusValid, result.Status, result.Message)
	}

	title := result.Record["title"].(map[string]any)
	if want := []any{"Sapiens"}; !reflect.DeepEqual(title["english"], want) {
		t.Errorf("Expected title.english %v, got %v", want, title["english"])
	}
	authors := result.Record["authors"].([]any)
	if len(authors) != 1 || authors[0].(map[string]any)["full_name"] != "Yuval Noah Harari" {
		t.Errorf("Expected authors coerced to one-element array, got %v", result.Record["authors"])
	}
	if want := []any{"https://example.com"}; !reflect.DeepEqual(result.Record["sources"], want) {
		t.Errorf("Expected sources %v, got %v", want, result.Record["sources"])
	}
	if result.Record["language"] != "Hebrew" {
		t.Errorf("Expected scalar language untouched, got %v", result.Record["language"])
	}
}

func TestRunRejectsUnknownProperties(t *testing.T) {
	desc := mustLookup(t, "single-language")

	result := Run(`{
		"title": {"original": "Sapiens"},
		"authors": [{"full_name": "Yuval Noah Harari"}],
		"language": "Hebrew",
		"sources": ["https://example.com"],
		"publisher": "Harper"
	}`, desc)

	if result.Status != StatusInvalid {
		t.Errorf("Expected additional property to be rejected, got %s", result.Status)
	}
}

func TestDecode(t *testing.T) {
	var entity struct {
		CanonicalTitle string `json:"canonical_title"`
	}
	raw := "```json\n{\"canonical_title\": \"Sapiens\"}\n```"
	if err := Decode(raw, &entity); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if entity.CanonicalTitle != "Sapiens" {
		t.Errorf("Expected Sapiens, got %s", entity.CanonicalTitle)
	}
}

func TestDedupeStrings(t *testing.T) {
	tests := []struct {
		name  string
		input []any
		want  []any
	}{
		{
			name:  "keeps first occurrence",
			input: []any{"a", "a", "b"},
			want:  []any{"a", "b"},
		},
		{
			name:  "preserves order",
			input: []any{"b", "a", "b", "c", "a"},
			want:  []any{"b", "a", "c"},
		},
		{
			name:  "passes non-strings through",
			input: []any{"a", float64(1), "a"},
			want:  []any{"a", float64(1)},
		},
		{
			name:  "empty input",
			input: []any{},
			want:  []any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dedupeStrings(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func deepCopy(record map[string]any) map[string]any {
	out := make(map[string]any, len(record))
	for k, v := range record {
		switch typed := v.(type) {
		case map[string]any:
			out[k] = deepCopy(typed)
		case []any:
			copied := make([]any, len(typed))
			copy(copied, typed)
			out[k] = copied
		default:
			out[k] = v
		}
	}
	return out
}
