package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Suggestion limits.
const (
	DefaultLimit = 5
	MaxLimit     = 20
)

// Suggestion is one ranked typeahead hit.
type Suggestion struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Cover string  `json:"cover"`
	Score float64 `json:"score"`
}

// ClampLimit applies the default and maximum suggestion counts.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return min(limit, MaxLimit)
}

// Suggest returns up to limit records ranked by title match, typo tolerance,
// and studio or genre matches. A blank query yields no suggestions.
func (s *SuggestionIndex) Suggest(ctx context.Context, q string, limit int) ([]Suggestion, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []Suggestion{}, nil
	}

	req := bleve.NewSearchRequestOptions(buildSuggestQuery(q), ClampLimit(limit), 0, false)
	req.Fields = []string{"title", "cover"}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := make([]Suggestion, 0, len(result.Hits))
	for _, hit := range result.Hits {
		sug := Suggestion{ID: hit.ID, Score: hit.Score}
		if t, ok := hit.Fields["title"].(string); ok {
			sug.Title = t
		}
		if c, ok := hit.Fields["cover"].(string); ok {
			sug.Cover = c
		}
		out = append(out, sug)
	}
	return out, nil
}

// buildSuggestQuery ORs together:
//   - an analyzed title match (highest boost)
//   - a prefix match on the last word typed, for autocomplete
//   - a fuzzy match per word, for typos
//   - plain matches on developer, publisher, genres, and tags
func buildSuggestQuery(q string) query.Query {
	lower := strings.ToLower(q)
	words := strings.Fields(lower)

	var queries []query.Query

	titleMatch := bleve.NewMatchQuery(q)
	titleMatch.SetField("title")
	titleMatch.SetBoost(3.0)
	queries = append(queries, titleMatch)

	if last := words[len(words)-1]; len(last) >= 2 {
		prefix := bleve.NewPrefixQuery(last)
		prefix.SetField("title_raw")
		prefix.SetBoost(1.5)
		queries = append(queries, prefix)
	}

	for _, w := range words {
		if len(w) < 4 {
			continue
		}
		fuzzy := bleve.NewFuzzyQuery(w)
		fuzzy.SetField("title_raw")
		fuzzy.SetFuzziness(1)
		fuzzy.SetBoost(0.8)
		queries = append(queries, fuzzy)
	}

	for _, field := range []string{"developer", "publisher", "genres", "tags"} {
		m := bleve.NewMatchQuery(q)
		m.SetField(field)
		m.SetBoost(0.5)
		queries = append(queries, m)
	}

	return bleve.NewDisjunctionQuery(queries...)
}
