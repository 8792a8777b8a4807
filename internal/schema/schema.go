package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed variants.yaml
var variantsYAML []byte

// DefaultVariant is the schema used when the caller does not pick one.
const DefaultVariant = "readhacker"

// Descriptor describes one metadata schema variant as data: the raw JSON
// Schema plus the field paths whose array values should be deduplicated
// during normalization.
type Descriptor struct {
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	DedupePaths []string       `yaml:"dedupe_paths" json:"dedupe_paths,omitempty"`
	Schema      map[string]any `yaml:"schema" json:"schema"`
}

type registry struct {
	Variants []Descriptor `yaml:"variants"`
}

var (
	loadOnce sync.Once
	loaded   registry
	loadErr  error
)

func load() (registry, error) {
	loadOnce.Do(func() {
		loadErr = yaml.Unmarshal(variantsYAML, &loaded)
	})
	return loaded, loadErr
}

// Variants returns all registered schema descriptors.
func Variants() ([]Descriptor, error) {
	reg, err := load()
	if err != nil {
		return nil, fmt.Errorf("failed to load schema variants: %w", err)
	}
	return reg.Variants, nil
}

// Lookup returns the descriptor registered under the given name.
func Lookup(name string) (*Descriptor, error) {
	if name == "" {
		name = DefaultVariant
	}
	reg, err := load()
	if err != nil {
		return nil, fmt.Errorf("failed to load schema variants: %w", err)
	}
	for i := range reg.Variants {
		if reg.Variants[i].Name == name {
			return &reg.Variants[i], nil
		}
	}
	names := make([]string, 0, len(reg.Variants))
	for _, v := range reg.Variants {
		names = append(names, v.Name)
	}
	return nil, fmt.Errorf("unknown schema variant %q (available: %s)", name, strings.Join(names, ", "))
}

// String returns the JSON Schema as a JSON string, suitable for embedding
// in a prompt.
func (d *Descriptor) String() string {
	data, err := json.MarshalIndent(d.Schema, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

// Compile compiles the raw JSON Schema for validation.
func (d *Descriptor) Compile() (*jsonschema.Schema, error) {
	data, err := json.Marshal(d.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema %q: %w", d.Name, err)
	}
	compiler := jsonschema.NewCompiler()
	compiled, err := compiler.Compile(data)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %q: %w", d.Name, err)
	}
	return compiled, nil
}

// ArrayPaths returns every dot-separated field path the schema declares as
// an array, in sorted order. Normalization coerces scalar or object values
// at exactly these paths and nowhere else.
func (d *Descriptor) ArrayPaths() []string {
	var paths []string
	collectArrayPaths(d.Schema, "", &paths)
	sort.Strings(paths)
	return paths
}

func collectArrayPaths(node map[string]any, prefix string, out *[]string) {
	props, ok := node["properties"].(map[string]any)
	if !ok {
		return
	}
	for name, raw := range props {
		sub, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}
		switch sub["type"] {
		case "array":
			*out = append(*out, path)
			if items, ok := sub["items"].(map[string]any); ok {
				collectArrayPaths(items, path, out)
			}
		case "object":
			collectArrayPaths(sub, path, out)
		}
	}
}

// Required reports whether the given top-level field is required by the schema.
func (d *Descriptor) Required(field string) bool {
	req, ok := d.Schema["required"].([]any)
	if !ok {
		return false
	}
	for _, r := range req {
		if s, ok := r.(string); ok && s == field {
			return true
		}
	}
	return false
}
