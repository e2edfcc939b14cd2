package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jdavis-cyber/lliam-ai-agent/internal/memory"
	"github.com/jdavis-cyber/lliam-ai-agent/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "put [content]",
		Short: "Store a new memory",
		Long:  "Store a memory with manual provenance. The content is embedded when an embedding provider is configured.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runPut,
	}

	cmd.Flags().StringP("category", "c", "other", "Category: preference, fact, decision, entity, procedure, other")
	cmd.Flags().Float64("confidence", 1.0, "Confidence in [0,1]")
	cmd.Flags().StringSliceP("tag", "t", nil, "Tag (repeatable)")
	cmd.Flags().String("session", "", "Originating session id")

	RootCmd.AddCommand(cmd)
}

func runPut(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")
	confidence, _ := cmd.Flags().GetFloat64("confidence")
	tags, _ := cmd.Flags().GetStringSlice("tag")
	session, _ := cmd.Flags().GetString("session")

	s, eng, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	id, err := eng.Store(cmd.Context(), memory.StoreParams{
		Content:       strings.Join(args, " "),
		Category:      model.Category(category),
		SourceType:    model.SourceManual,
		SourceSession: session,
		Confidence:    confidence,
		Tags:          tags,
	})
	if err != nil {
		exitErr("put", err)
	}

	b, _ := json.Marshal(map[string]string{"id": id})
	fmt.Println(string(b))
}
