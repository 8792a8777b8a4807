package extraction

import (
	"encoding/json"
	"fmt"

	"github.com/readhacker/readhacker/internal/schema"
)

const metadataSystemPrompt = `You are an expert bibliographic metadata researcher. Extract structured, factual book metadata.

RULES:
1. Return ONLY a single JSON object, no prose and no markdown fences
2. The object must conform to the JSON Schema provided in the request
3. Do not invent information; omit optional fields you cannot verify
4. Include source URLs documenting where each fact was found
5. Use the original-language title in title.original and list English title variants in title.english`

const resolveSystemPrompt = `You are a bibliographic entity resolver. Given a possibly incomplete or misspelled book query, identify the canonical work.

Return ONLY a JSON object:

{
  "canonical_title": "...",
  "canonical_author": "...",
  "confidence": "high|medium|low",
  "notes": "brief disambiguation notes"
}

If several works match, pick the best known one and say so in notes.`

const researchSystemPrompt = `You are a literary researcher. Given book metadata, write a concise research summary covering the work's publication history, critical reception, themes, and cultural significance. Plain text, no JSON.`

const crossReferenceSystemPrompt = `You are a bibliographic fact checker. Given an extracted metadata record, rate how confident you are in each top-level field by cross-referencing it against well-known bibliographic sources.

Return ONLY a JSON object:

{
  "overall": "high|medium|low",
  "fields": [
    {"field": "...", "confidence": "high|medium|low", "reason": "..."}
  ],
  "notes": "anything that looked wrong or unverifiable"
}`

// buildMetadataPrompt builds the user prompt for metadata extraction,
// embedding the target schema so the model knows the exact shape to return.
func buildMetadataPrompt(bookTitle, authorName string, desc *schema.Descriptor) string {
	author := authorName
	if author == "" {
		author = "N/A"
	}
	return fmt.Sprintf(`Book title: %s
Author (optional): %s

Return metadata compliant with this schema:
%s`, bookTitle, author, desc.String())
}

func buildResolvePrompt(bookTitle, authorName string) string {
	author := authorName
	if author == "" {
		author = "N/A"
	}
	return fmt.Sprintf("Book title: %s\nAuthor (optional): %s\n\nResolve this query to the canonical work.", bookTitle, author)
}

func buildResearchPrompt(bookTitle string, record map[string]any) (string, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal record for research prompt: %w", err)
	}
	return fmt.Sprintf("Here is the extracted metadata for %q:\n\n%s\n\nWrite the research summary.", bookTitle, string(data)), nil
}

func buildCrossReferencePrompt(bookTitle string, record map[string]any) (string, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal record for cross-reference prompt: %w", err)
	}
	return fmt.Sprintf("Here is the extracted metadata record for %q:\n\n%s\n\nRate the confidence of each field.", bookTitle, string(data)), nil
}
