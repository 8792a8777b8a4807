package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/readhacker/readhacker/internal/eval/run"
)

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Provider      string `yaml:"provider"`
	Model         string `yaml:"model"`
	SchemaVariant string `yaml:"schemavariant"`
	DatasetPath   string `yaml:"datasetpath"`
	SampleSize    int    `yaml:"samplesize"`
	Timestamp     string `yaml:"timestamp"`
}

// EvalResult represents a single evaluation result
type EvalResult struct {
	Identifier        string             `yaml:"identifier"`
	Title             string             `yaml:"title"`
	Author            string             `yaml:"author,omitempty"`
	Status            string             `yaml:"status"`
	ValidationMessage string             `yaml:"validationmessage,omitempty"`
	OverallScore      float64            `yaml:"overallscore"`
	FieldScores       map[string]float64 `yaml:"fieldscores,omitempty"`
}

// EvalSpec represents the complete evaluation output
type EvalSpec struct {
	Config    EvalConfig   `yaml:"config"`
	ValidRate float64      `yaml:"validrate"`
	MeanScore float64      `yaml:"meanscore"`
	Results   []EvalResult `yaml:"results"`
}

// SaveToYAML saves evaluation results to a YAML file in evals/ directory
func SaveToYAML(summary *run.Summary, datasetPath string, sampleSize int) error {
	if err := os.MkdirAll("evals", 0755); err != nil {
		return fmt.Errorf("failed to create evals directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")

	spec := EvalSpec{
		Config: EvalConfig{
			Provider:      summary.Provider,
			Model:         summary.Model,
			SchemaVariant: summary.SchemaVariant,
			DatasetPath:   datasetPath,
			SampleSize:    sampleSize,
			Timestamp:     timestamp,
		},
		MeanScore: summary.MeanScore,
		Results:   make([]EvalResult, 0, len(summary.Results)),
	}
	if len(summary.Results) > 0 {
		spec.ValidRate = float64(summary.ValidCount) / float64(len(summary.Results))
	}

	for _, r := range summary.Results {
		if r.Error != "" {
			continue // Skip failed fetches
		}
		spec.Results = append(spec.Results, EvalResult{
			Identifier:        r.Identifier,
			Title:             r.Title,
			Author:            r.Author,
			Status:            r.Status,
			ValidationMessage: r.ValidationMessage,
			OverallScore:      r.OverallScore,
			FieldScores:       r.FieldScores,
		})
	}

	model := summary.Model
	if model == "" {
		model = "default"
	}
	filename := fmt.Sprintf("evals/%s-%s.yaml", model, timestamp)

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}

	absPath, _ := filepath.Abs(filename)
	fmt.Printf("\nEvaluation results saved to: %s\n", absPath)

	return nil
}
