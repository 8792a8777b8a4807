package schema

import (
	"reflect"
	"strings"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		variant  string
		expected string
		wantErr  bool
	}{
		{
			name:     "known variant",
			variant:  "readhacker",
			expected: "readhacker",
		},
		{
			name:     "empty name falls back to default",
			variant:  "",
			expected: DefaultVariant,
		},
		{
			name:    "unknown variant",
			variant: "nope",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := Lookup(tt.variant)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got descriptor %s", desc.Name)
				} else if !strings.Contains(err.Error(), "available:") {
					t.Errorf("Expected error to list available variants, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if desc.Name != tt.expected {
				t.Errorf("Expected descriptor %s, got %s", tt.expected, desc.Name)
			}
		})
	}
}

func TestVariants(t *testing.T) {
	variants, err := Variants()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(variants) < 2 {
		t.Fatalf("Expected at least two registered variants, got %d", len(variants))
	}
	for _, v := range variants {
		if v.Name == "" {
			t.Error("Expected every variant to have a name")
		}
		if v.Schema == nil {
			t.Errorf("Expected variant %s to carry a schema", v.Name)
		}
	}
}

func TestArrayPaths(t *testing.T) {
	tests := []struct {
		name    string
		variant string
		want    []string
	}{
		{
			name:    "canonical variant",
			variant: "readhacker",
			want:    []string{"authors", "editions", "genres", "languages", "sources", "title.english"},
		},
		{
			name:    "single language variant has no languages array",
			variant: "single-language",
			want:    []string{"authors", "sources", "title.english"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := Lookup(tt.variant)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			got := desc.ArrayPaths()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRequired(t *testing.T) {
	desc, err := Lookup("readhacker-lite")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !desc.Required("title") {
		t.Error("Expected title to be required")
	}
	if desc.Required("sources") {
		t.Error("Expected sources to be optional in the lite variant")
	}
}

func TestCompile(t *testing.T) {
	variants, err := Variants()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, v := range variants {
		if _, err := v.Compile(); err != nil {
			t.Errorf("Expected variant %s to compile, got %v", v.Name, err)
		}
	}
}

func TestStringEmbedsSchema(t *testing.T) {
	desc, err := Lookup("readhacker")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	s := desc.String()
	if !strings.Contains(s, `"properties"`) || !strings.Contains(s, `"title"`) {
		t.Errorf("Expected JSON Schema text, got %q", s)
	}
}

func TestDedupePathsOnlyOnConfiguredVariant(t *testing.T) {
	bio, err := Lookup("biographical")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !reflect.DeepEqual(bio.DedupePaths, []string{"title.english"}) {
		t.Errorf("Expected biographical to dedupe title.english, got %v", bio.DedupePaths)
	}

	canonical, err := Lookup("readhacker")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(canonical.DedupePaths) != 0 {
		t.Errorf("Expected canonical variant to have no dedupe paths, got %v", canonical.DedupePaths)
	}
}
