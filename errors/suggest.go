package errors

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// MaxSuggestions is the maximum number of suggestions to return.
const MaxSuggestions = 3

// Suggestion represents a suggested correction with its match score.
type Suggestion struct {
	Value string
	Score int
}

// SuggestSimilar finds candidates that fuzzily match the target, best match
// first. Exact matches and targets shorter than three characters produce no
// suggestions.
func SuggestSimilar(target string, candidates []string) []Suggestion {
	if len(target) < 3 || len(candidates) == 0 {
		return nil
	}
	var suggestions []Suggestion
	for _, match := range fuzzy.Find(target, candidates) {
		if strings.EqualFold(match.Str, target) {
			continue
		}
		suggestions = append(suggestions, Suggestion{Value: match.Str, Score: match.Score})
		if len(suggestions) == MaxSuggestions {
			break
		}
	}
	return suggestions
}

// FormatSuggestions formats suggestions as a user-friendly string.
// Returns empty string if no suggestions.
func FormatSuggestions(suggestions []Suggestion) string {
	if len(suggestions) == 0 {
		return ""
	}

	if len(suggestions) == 1 {
		return "Did you mean '" + suggestions[0].Value + "'?"
	}

	var b strings.Builder
	b.WriteString("Did you mean one of: ")
	for i, s := range suggestions {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("'")
		b.WriteString(s.Value)
		b.WriteString("'")
	}
	b.WriteString("?")
	return b.String()
}
