// Package retrieval supplies supplementary passages for thin content items.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/pathwise/pathwise/internal/store"
)

// Query is a retrieval request. Filter keys restrict matches on passage
// metadata; "content_id" is always supported.
type Query struct {
	Text   string
	TopK   int
	Filter map[string]string
}

// Passage is a scored retrieval hit.
type Passage struct {
	Text     string
	Score    float64
	Metadata map[string]string
}

// Retriever finds passages relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, q Query) ([]Passage, error)
}

// StoreRetriever ranks stored passages by term overlap with the query.
type StoreRetriever struct {
	passages store.PassageRepo
}

// NewStoreRetriever creates a retriever over the passage repo.
func NewStoreRetriever(passages store.PassageRepo) *StoreRetriever {
	return &StoreRetriever{passages: passages}
}

func (r *StoreRetriever) Retrieve(ctx context.Context, q Query) ([]Passage, error) {
	if q.TopK <= 0 {
		return nil, nil
	}

	rows, err := r.passages.List(ctx, q.Filter["content_id"])
	if err != nil {
		return nil, fmt.Errorf("list passages: %w", err)
	}

	terms := tokenize(q.Text)
	var scored []Passage
	for _, row := range rows {
		if !matches(row.Metadata, q.Filter) {
			continue
		}
		scored = append(scored, Passage{
			Text:     row.Text,
			Score:    overlap(terms, tokenize(row.Text)),
			Metadata: row.Metadata,
		})
	}

	// Stable so equal scores keep insertion order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > q.TopK {
		scored = scored[:q.TopK]
	}
	return scored, nil
}

func matches(meta, filter map[string]string) bool {
	for k, v := range filter {
		if meta[k] != v {
			return false
		}
	}
	return true
}

// overlap is the fraction of query terms found in the passage.
func overlap(query map[string]struct{}, passage map[string]struct{}) float64 {
	if len(query) == 0 {
		return 0
	}
	hits := 0
	for t := range query {
		if _, ok := passage[t]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(query))
}

func tokenize(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(f) > 2 {
			out[f] = struct{}{}
		}
	}
	return out
}
