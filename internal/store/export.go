package store

import (
	"context"

	"github.com/jdavis-cyber/lliam-ai-agent/internal/model"
)

// ExportAll returns every record, newest first, without bumping access counts.
func (s *Store) ExportAll(ctx context.Context) ([]model.Memory, error) {
	return s.List(ctx, ListParams{})
}

// Import creates fresh records from an export. Imported records get new ids
// and import provenance; embeddings are dropped so the caller can re-embed
// with the active provider. Returns the number imported.
func (s *Store) Import(ctx context.Context, memories []model.Memory) (int, error) {
	imported := 0
	for _, m := range memories {
		_, err := s.Create(ctx, CreateParams{
			Content:            m.Content,
			Category:           m.Category,
			SourceType:         model.SourceImport,
			SourceSession:      m.SourceSession,
			SourceMessageIndex: m.SourceMessageIndex,
			Confidence:         m.Confidence,
			Tags:               m.Tags,
		})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
