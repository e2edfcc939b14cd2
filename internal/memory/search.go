package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jdavis-cyber/lliam-ai-agent/internal/model"
	"github.com/jdavis-cyber/lliam-ai-agent/internal/store"
)

// SearchOptions tune the hybrid merger. Weights need not sum to 1.
type SearchOptions struct {
	MaxResults          int
	MinScore            float64
	VectorWeight        float64
	KeywordWeight       float64
	CandidateMultiplier int
}

// DefaultSearchOptions returns the engine defaults.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MaxResults:          10,
		MinScore:            0.0,
		VectorWeight:        0.7,
		KeywordWeight:       0.3,
		CandidateMultiplier: 4,
	}
}

func (o *SearchOptions) fill() {
	if o.MaxResults <= 0 {
		o.MaxResults = 10
	}
	if o.VectorWeight == 0 && o.KeywordWeight == 0 {
		o.VectorWeight = 0.7
		o.KeywordWeight = 0.3
	}
	if o.CandidateMultiplier <= 0 {
		o.CandidateMultiplier = 4
	}
}

// Search runs the hybrid merger: vector and keyword retrieval fan out
// concurrently over an over-fetched candidate set, keyword scores are
// re-normalized against the set maximum, and the two result sets merge by id.
// A record found by both signals becomes a hybrid match with a weighted
// combined score. Survivors are hydrated from the store; ids that vanished
// between scoring and hydration are dropped silently.
func (e *Engine) Search(ctx context.Context, query string, opts SearchOptions) ([]model.SearchResult, error) {
	opts.fill()
	candidateLimit := opts.MaxResults * opts.CandidateMultiplier

	queryVec := e.tryEmbed(ctx, query)

	var (
		wg      sync.WaitGroup
		vecHits []store.Hit
		kwHits  []store.Hit
		vecErr  error
		kwErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		if queryVec == nil {
			return
		}
		vecHits, vecErr = e.store.VectorSearch(ctx, queryVec, candidateLimit)
	}()
	go func() {
		defer wg.Done()
		kwHits, kwErr = e.store.KeywordSearch(ctx, query, candidateLimit)
	}()
	wg.Wait()

	if vecErr != nil {
		return nil, vecErr
	}
	if kwErr != nil {
		return nil, kwErr
	}

	// Top keyword hit re-normalizes to 1.0 before weighting.
	if len(kwHits) > 0 && kwHits[0].Score > 0 {
		max := kwHits[0].Score
		for i := range kwHits {
			kwHits[i].Score /= max
		}
	}

	type merged struct {
		score     float64
		matchType model.MatchType
	}
	byID := make(map[string]*merged)
	var order []string
	for _, h := range vecHits {
		byID[h.ID] = &merged{score: h.Score, matchType: model.MatchVector}
		order = append(order, h.ID)
	}
	for _, h := range kwHits {
		if m, ok := byID[h.ID]; ok {
			m.score = opts.VectorWeight*m.score + opts.KeywordWeight*h.Score
			m.matchType = model.MatchHybrid
		} else {
			byID[h.ID] = &merged{score: h.Score, matchType: model.MatchKeyword}
			order = append(order, h.ID)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return byID[order[i]].score > byID[order[j]].score
	})

	var ids []string
	for _, id := range order {
		if byID[id].score >= opts.MinScore {
			ids = append(ids, id)
		}
	}

	records, err := e.store.ByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := make([]model.SearchResult, 0, len(records))
	for _, rec := range records {
		m := byID[rec.ID]
		score := m.score
		if score > 1 {
			score = 1
		}
		results = append(results, model.SearchResult{
			Memory:    rec,
			Score:     score,
			MatchType: m.matchType,
		})
		if len(results) == opts.MaxResults {
			break
		}
	}
	return results, nil
}
