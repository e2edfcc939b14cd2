package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/jdavis-cyber/lliam-ai-agent/internal/model"
)

// Recall defaults: tighter than plain search since the block is injected into
// a prompt budget.
const (
	recallMaxResults = 5
	recallMinScore   = 0.3
)

// RecallResult carries the ranked results plus the rendered context block.
type RecallResult struct {
	Results []model.SearchResult `json:"results"`
	Block   string               `json:"block"`
}

// Recall runs a hybrid search for the user utterance with fixed defaults and
// renders the results into a tagged text block for prompt injection. The
// block is empty when nothing qualifies.
func (e *Engine) Recall(ctx context.Context, userText string) (*RecallResult, error) {
	opts := DefaultSearchOptions()
	opts.MaxResults = recallMaxResults
	opts.MinScore = recallMinScore

	results, err := e.Search(ctx, userText, opts)
	if err != nil {
		return nil, err
	}
	return &RecallResult{Results: results, Block: formatBlock(results)}, nil
}

func formatBlock(results []model.SearchResult) string {
	if len(results) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("<relevant-memories>\n")
	for i, r := range results {
		fmt.Fprintf(&b, "%d. [%s] (confidence %.2f, relevance %.3f, %s) %s",
			i+1, r.Category, r.Confidence, r.Score, r.MatchType, r.Content)
		if len(r.Tags) > 0 {
			fmt.Fprintf(&b, " (tags: %s)", strings.Join(r.Tags, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("</relevant-memories>")
	return b.String()
}
