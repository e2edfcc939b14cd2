// Package model defines the core memory data types.
package model

// Category classifies what kind of fact a memory holds.
type Category string

// Valid memory categories.
const (
	CategoryPreference Category = "preference"
	CategoryFact       Category = "fact"
	CategoryDecision   Category = "decision"
	CategoryEntity     Category = "entity"
	CategoryProcedure  Category = "procedure"
	CategoryOther      Category = "other"
)

// ValidCategories are the allowed memory categories.
var ValidCategories = map[Category]bool{
	CategoryPreference: true,
	CategoryFact:       true,
	CategoryDecision:   true,
	CategoryEntity:     true,
	CategoryProcedure:  true,
	CategoryOther:      true,
}

// SourceType records how a memory entered the store.
type SourceType string

// Valid source types.
const (
	SourceManual      SourceType = "manual"
	SourceAutoCapture SourceType = "auto_capture"
	SourceImport      SourceType = "import"
)

// ValidSourceTypes are the allowed provenance markers.
var ValidSourceTypes = map[SourceType]bool{
	SourceManual:      true,
	SourceAutoCapture: true,
	SourceImport:      true,
}

// Memory represents a stored memory entry. Timestamps are Unix milliseconds.
// The embedding travels as raw float32 data and is serialized separately by
// the store, so it is excluded from the default JSON shape.
type Memory struct {
	ID                 string     `json:"id"`
	Category           Category   `json:"category"`
	Content            string     `json:"content"`
	Embedding          []float32  `json:"-"`
	EmbeddingModel     string     `json:"embedding_model,omitempty"`
	EmbeddingDims      int        `json:"embedding_dims,omitempty"`
	SourceType         SourceType `json:"source_type"`
	SourceSession      string     `json:"source_session,omitempty"`
	SourceMessageIndex *int       `json:"source_message_index,omitempty"`
	Confidence         float64    `json:"confidence"`
	Tags               []string   `json:"tags,omitempty"`
	CreatedAt          int64      `json:"created_at"`
	UpdatedAt          int64      `json:"updated_at"`
	LastAccessedAt     int64      `json:"last_accessed_at,omitempty"`
	AccessCount        int        `json:"access_count"`
}

// HasEmbedding reports whether the memory carries a stored vector.
func (m *Memory) HasEmbedding() bool {
	return len(m.Embedding) > 0
}

// MatchType says which retrieval signal produced a search result.
type MatchType string

// Match provenance values.
const (
	MatchVector  MatchType = "vector"
	MatchKeyword MatchType = "keyword"
	MatchHybrid  MatchType = "hybrid"
)

// SearchResult wraps a memory with its relevance score and match provenance.
// Scores are normalized to [0,1]. Results are ephemeral, never persisted.
type SearchResult struct {
	Memory
	Score     float64   `json:"score"`
	MatchType MatchType `json:"match_type"`
}
