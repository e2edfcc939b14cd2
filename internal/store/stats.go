package store

import (
	"context"
	"os"

	"github.com/jdavis-cyber/lliam-ai-agent/internal/model"
)

// Stats holds store statistics.
type Stats struct {
	Path           string                 `json:"path"`
	SizeBytes      int64                  `json:"size_bytes"`
	Total          int                    `json:"total"`
	WithEmbeddings int                    `json:"with_embeddings"`
	ByCategory     map[model.Category]int `json:"by_category"`
}

// Stats returns record counts and the on-disk file size. The size reflects
// the last save, not unsaved in-memory state.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	if !s.opened {
		return nil, ErrNotOpen
	}
	st := &Stats{
		Path:       s.path,
		ByCategory: make(map[model.Category]int),
	}
	if info, err := os.Stat(s.path); err == nil {
		st.SizeBytes = info.Size()
	}
	for _, rec := range s.records {
		st.Total++
		if rec.HasEmbedding() {
			st.WithEmbeddings++
		}
		st.ByCategory[rec.Category]++
	}
	return st, nil
}
