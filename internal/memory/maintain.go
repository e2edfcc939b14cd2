package memory

import (
	"context"
	"fmt"

	"github.com/jdavis-cyber/lliam-ai-agent/internal/embedding"
	"github.com/jdavis-cyber/lliam-ai-agent/internal/store"
)

// ReembedAll regenerates the embedding of every record with the active
// provider, batchSize texts per provider call. Used after switching models.
// Returns the number of records re-embedded.
func (e *Engine) ReembedAll(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 16
	}
	records, err := e.store.List(ctx, store.ListParams{})
	if err != nil {
		return 0, err
	}

	done := 0
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		texts := make([]string, len(batch))
		for i, rec := range batch {
			texts[i] = rec.Content
		}
		vecs, err := e.provider.EmbedBatch(ctx, texts)
		if err != nil {
			return done, fmt.Errorf("embed batch at %d: %w", start, err)
		}
		for i, rec := range batch {
			embedding.Normalize(vecs[i])
			if _, err := e.store.SetEmbedding(ctx, rec.ID, vecs[i], e.provider.ModelName()); err != nil {
				return done, err
			}
			done++
		}
	}
	return done, nil
}

// RebuildIndex regenerates the keyword index from current record content.
func (e *Engine) RebuildIndex(ctx context.Context) error {
	return e.store.RebuildIndex(ctx)
}
