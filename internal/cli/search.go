package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jdavis-cyber/lliam-ai-agent/internal/memory"
)

func init() {
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Hybrid search over memories",
		Long:  "Rank memories against the query using combined keyword (BM25) and semantic (cosine) signals.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runSearch,
	}

	cmd.Flags().IntP("limit", "l", 10, "Max results")
	cmd.Flags().Float64("min-score", 0, "Drop results scoring below this")
	cmd.Flags().Float64("vector-weight", 0.7, "Weight of the semantic signal for hybrid matches")
	cmd.Flags().Float64("keyword-weight", 0.3, "Weight of the lexical signal for hybrid matches")

	RootCmd.AddCommand(cmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	minScore, _ := cmd.Flags().GetFloat64("min-score")
	vw, _ := cmd.Flags().GetFloat64("vector-weight")
	kw, _ := cmd.Flags().GetFloat64("keyword-weight")

	s, eng, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	results, err := eng.Search(cmd.Context(), strings.Join(args, " "), memory.SearchOptions{
		MaxResults:    limit,
		MinScore:      minScore,
		VectorWeight:  vw,
		KeywordWeight: kw,
	})
	if err != nil {
		exitErr("search", err)
	}

	if len(results) == 0 {
		fmt.Println("[]")
		return
	}
	b, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(b))
}
