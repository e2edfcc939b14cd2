// Package memory wires the record store and an embedding provider into the
// hybrid memory engine: store-with-embedding, ranked hybrid search, capture
// with deduplication, and recall formatting.
package memory

import (
	"context"
	"log/slog"

	"github.com/jdavis-cyber/lliam-ai-agent/internal/embedding"
	"github.com/jdavis-cyber/lliam-ai-agent/internal/model"
	"github.com/jdavis-cyber/lliam-ai-agent/internal/store"
)

// Engine coordinates the store and the embedding provider. Dependencies are
// injected at construction; there are no package-level singletons. Like the
// store, the engine assumes a single logical writer.
type Engine struct {
	store    *store.Store
	provider embedding.Provider
	logger   *slog.Logger
}

// New creates an engine over the given store and provider.
func New(s *store.Store, p embedding.Provider, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: s, provider: p, logger: logger}
}

// StoreParams holds the fields for storing a new memory.
type StoreParams struct {
	Content            string
	Category           model.Category
	SourceType         model.SourceType
	SourceSession      string
	SourceMessageIndex *int
	Confidence         float64
	Tags               []string
}

// Store persists a new memory, generating its embedding opportunistically.
// An embedding failure degrades to a keyword-only record; it never blocks
// creation.
func (e *Engine) Store(ctx context.Context, p StoreParams) (string, error) {
	vec := e.tryEmbed(ctx, p.Content)
	return e.store.Create(ctx, store.CreateParams{
		Content:            p.Content,
		Category:           p.Category,
		SourceType:         p.SourceType,
		SourceSession:      p.SourceSession,
		SourceMessageIndex: p.SourceMessageIndex,
		Confidence:         p.Confidence,
		Tags:               p.Tags,
		Embedding:          vec,
		EmbeddingModel:     e.provider.ModelName(),
	})
}

// Update applies a partial update. A content change regenerates the embedding
// (best effort: on failure the record falls back to keyword-only search).
// Returns false when the id does not exist.
func (e *Engine) Update(ctx context.Context, id string, p store.UpdateParams) (bool, error) {
	ok, err := e.store.Update(ctx, id, p)
	if err != nil || !ok {
		return ok, err
	}
	if p.Content != nil {
		vec := e.tryEmbed(ctx, *p.Content)
		if _, err := e.store.SetEmbedding(ctx, id, vec, e.provider.ModelName()); err != nil {
			return true, err
		}
	}
	return true, nil
}

// tryEmbed returns a normalized vector for the text, or nil when the provider
// fails. Failures are logged and swallowed; storage must not depend on an
// external model being reachable.
func (e *Engine) tryEmbed(ctx context.Context, text string) []float32 {
	vec, err := e.provider.Embed(ctx, text)
	if err != nil {
		e.logger.Warn("embedding failed, storing keyword-only",
			"model", e.provider.ModelName(), "error", err)
		return nil
	}
	embedding.Normalize(vec)
	return vec
}

// Get, Delete, DeleteBySession, List, Count and Stats pass through to the
// store; they exist so callers can hold a single engine handle.

func (e *Engine) Get(ctx context.Context, id string) (*model.Memory, error) {
	return e.store.Get(ctx, id)
}

func (e *Engine) Delete(ctx context.Context, id string) (bool, error) {
	return e.store.Delete(ctx, id)
}

func (e *Engine) DeleteBySession(ctx context.Context, sessionID string) (int, error) {
	return e.store.DeleteBySession(ctx, sessionID)
}

func (e *Engine) List(ctx context.Context, p store.ListParams) ([]model.Memory, error) {
	return e.store.List(ctx, p)
}

func (e *Engine) Count(ctx context.Context, category model.Category) (int, error) {
	return e.store.Count(ctx, category)
}

func (e *Engine) Stats(ctx context.Context) (*store.Stats, error) {
	return e.store.Stats(ctx)
}
