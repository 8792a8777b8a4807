package run

import (
	"strings"

	"github.com/readhacker/readhacker/internal/eval/dataset"
)

// FieldScores holds per-field agreement between an extracted record and
// the reference catalog record.
type FieldScores map[string]float64

// ScoreRecord compares an extracted, normalized record against a reference
// record. Scores are in [0, 1] per field; only fields the reference has a
// value for are scored.
func ScoreRecord(record map[string]any, ref dataset.ReferenceRecord) FieldScores {
	scores := FieldScores{}

	if ref.Title != "" {
		scores["title"] = scoreTitle(record, ref.QueryTitle())
	}
	if ref.Author != "" {
		scores["author"] = scoreAuthor(record, ref.QueryAuthor())
	}
	if ref.Language != "" {
		scores["language"] = scoreLanguage(record, ref.Language)
	}
	if len(ref.Genres) > 0 {
		scores["genres"] = scoreGenres(record, ref.Genres)
	}

	return scores
}

// Overall returns the mean of the per-field scores, or 0 if none were scored.
func (s FieldScores) Overall() float64 {
	if len(s) == 0 {
		return 0
	}
	var total float64
	for _, v := range s {
		total += v
	}
	return total / float64(len(s))
}

func scoreTitle(record map[string]any, want string) float64 {
	title, ok := record["title"].(map[string]any)
	if !ok {
		return 0
	}

	candidates := []string{}
	if original, ok := title["original"].(string); ok {
		candidates = append(candidates, original)
	}
	if english, ok := title["english"].([]any); ok {
		for _, v := range english {
			if s, ok := v.(string); ok {
				candidates = append(candidates, s)
			}
		}
	}

	best := 0.0
	for _, c := range candidates {
		best = max(best, fuzzyMatch(c, want))
	}
	return best
}

func scoreAuthor(record map[string]any, want string) float64 {
	authors, ok := record["authors"].([]any)
	if !ok {
		return 0
	}

	best := 0.0
	for _, a := range authors {
		author, ok := a.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := author["full_name"].(string); ok {
			best = max(best, fuzzyMatch(name, want))
		}
	}
	return best
}

func scoreLanguage(record map[string]any, want string) float64 {
	// Variants use either a plural array or a singular string.
	switch v := record["languages"].(type) {
	case []any:
		for _, lang := range v {
			if s, ok := lang.(string); ok && strings.EqualFold(strings.TrimSpace(s), want) {
				return 1
			}
		}
		return 0
	}
	if s, ok := record["language"].(string); ok && strings.EqualFold(strings.TrimSpace(s), want) {
		return 1
	}
	return 0
}

func scoreGenres(record map[string]any, want []string) float64 {
	genres, ok := record["genres"].([]any)
	if !ok || len(genres) == 0 {
		return 0
	}

	matched := 0
	for _, w := range want {
		for _, g := range genres {
			if s, ok := g.(string); ok && strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(w)) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(want))
}

// fuzzyMatch scores two strings: 1.0 for a case-insensitive match, 0.5 when
// one contains the other, 0 otherwise.
func fuzzyMatch(got, want string) float64 {
	got = strings.ToLower(strings.TrimSpace(got))
	want = strings.ToLower(strings.TrimSpace(want))
	if got == "" || want == "" {
		return 0
	}
	if got == want {
		return 1
	}
	if strings.Contains(got, want) || strings.Contains(want, got) {
		return 0.5
	}
	return 0
}
