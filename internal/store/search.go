package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/jdavis-cyber/lliam-ai-agent/internal/embedding"
)

// Hit is a scored reference to a record, produced by the raw search paths
// before hydration. Scores are in [0,1].
type Hit struct {
	ID    string
	Score float64
}

// VectorSearch scans every stored embedding against the query vector and
// returns the best matches. Cosine similarity is remapped from [-1,1] to a
// [0,1] score via (sim+1)/2; non-positive scores are dropped. The scan is
// O(corpus x dims), fine for the bounded corpora this store targets.
func (s *Store) VectorSearch(ctx context.Context, query []float32, limit int) ([]Hit, error) {
	if !s.opened {
		return nil, ErrNotOpen
	}
	rows, err := s.AllEmbeddings(ctx)
	if err != nil {
		return nil, err
	}

	var hits []Hit
	for _, row := range rows {
		sim, err := embedding.CosineSimilarity(query, row.Vector)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", row.ID, err)
		}
		score := (sim + 1) / 2
		if score <= 0 {
			continue
		}
		hits = append(hits, Hit{ID: row.ID, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// KeywordSearch tokenizes the query and ranks matching records with a
// normalized BM25 score. Queries that tokenize to nothing, match nothing, or
// trip the FTS parser all return an empty result set.
func (s *Store) KeywordSearch(ctx context.Context, query string, limit int) ([]Hit, error) {
	if !s.opened {
		return nil, ErrNotOpen
	}
	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	candidates, stats, err := s.index.search(ctx, terms)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	hits := make([]Hit, 0, len(candidates))
	for _, id := range candidates {
		score := bm25Score(stats, terms, id)
		if score <= 0 {
			continue
		}
		hits = append(hits, Hit{ID: id, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
