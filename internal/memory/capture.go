package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jdavis-cyber/lliam-ai-agent/internal/embedding"
	"github.com/jdavis-cyber/lliam-ai-agent/internal/model"
	"github.com/jdavis-cyber/lliam-ai-agent/internal/store"
)

// Capture policy defaults.
const (
	captureMinConfidence = 0.6
	captureMaxCandidates = 5
	dedupThreshold       = 0.90
)

// ExtractFunc is the text-generation capability the capture path depends on:
// given an extraction prompt it returns raw model output expected to contain
// a JSON array of candidate facts.
type ExtractFunc func(ctx context.Context, prompt string) (string, error)

// Candidate is one extracted fact proposed for storage.
type Candidate struct {
	Content    string         `json:"content"`
	Category   model.Category `json:"category"`
	Confidence float64        `json:"confidence"`
	Tags       []string       `json:"tags,omitempty"`
}

// CaptureFromConversation extracts candidate facts from one conversation turn
// and persists the ones that survive the confidence, category and
// near-duplicate filters. Returns the ids of the records actually stored.
// Malformed extraction output yields zero candidates, never an error.
func (e *Engine) CaptureFromConversation(ctx context.Context, userText, assistantText, sessionID string, extract ExtractFunc) ([]string, error) {
	raw, err := extract(ctx, buildExtractionPrompt(userText, assistantText))
	if err != nil {
		return nil, fmt.Errorf("extract candidates: %w", err)
	}

	candidates := parseCandidates(raw)
	if len(candidates) > captureMaxCandidates {
		candidates = candidates[:captureMaxCandidates]
	}

	var ids []string
	for _, c := range candidates {
		if c.Content == "" || c.Confidence < captureMinConfidence {
			continue
		}
		if !model.ValidCategories[c.Category] {
			continue
		}

		id, err := e.captureOne(ctx, c, sessionID)
		if err != nil {
			return ids, err
		}
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// captureOne stores a single candidate unless an existing record is a near
// duplicate. Returns "" when the candidate was rejected as a duplicate. When
// embedding fails the candidate is stored without deduplication, best effort.
func (e *Engine) captureOne(ctx context.Context, c Candidate, sessionID string) (string, error) {
	params := store.CreateParams{
		Content:       c.Content,
		Category:      c.Category,
		SourceType:    model.SourceAutoCapture,
		SourceSession: sessionID,
		Confidence:    c.Confidence,
		Tags:          c.Tags,
	}

	vec, err := e.provider.Embed(ctx, c.Content)
	if err != nil {
		e.logger.Warn("embedding failed, capturing without dedup", "error", err)
		return e.store.Create(ctx, params)
	}
	embedding.Normalize(vec)

	rows, err := e.store.AllEmbeddings(ctx)
	if err != nil {
		return "", err
	}
	for _, row := range rows {
		sim, err := embedding.CosineSimilarity(vec, row.Vector)
		if err != nil {
			return "", fmt.Errorf("record %s: %w", row.ID, err)
		}
		if (sim+1)/2 >= dedupThreshold {
			e.logger.Debug("capture rejected near-duplicate",
				"existing", row.ID, "similarity", (sim+1)/2)
			return "", nil
		}
	}

	params.Embedding = vec
	params.EmbeddingModel = e.provider.ModelName()
	return e.store.Create(ctx, params)
}

func buildExtractionPrompt(userText, assistantText string) string {
	var b strings.Builder
	b.WriteString("Extract durable facts about the user from this exchange.\n")
	b.WriteString("Respond with only a JSON array; each element is an object with\n")
	b.WriteString(`"content" (string), "category" (one of preference, fact, decision, entity, procedure, other),`)
	b.WriteString("\n\"confidence\" (0..1) and optional \"tags\" (array of strings).\n")
	b.WriteString("Return [] when nothing is worth remembering.\n\n")
	b.WriteString("User: ")
	b.WriteString(userText)
	b.WriteString("\nAssistant: ")
	b.WriteString(assistantText)
	b.WriteString("\n")
	return b.String()
}

// parseCandidates pulls the first JSON array out of raw model output. Models
// wrap arrays in prose and code fences often enough that scanning for the
// bracket span beats strict decoding. Anything unparsable means no candidates.
func parseCandidates(raw string) []Candidate {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil
	}
	var out []Candidate
	if err := json.Unmarshal([]byte(raw[start:end+1]), &out); err != nil {
		return nil
	}
	return out
}
