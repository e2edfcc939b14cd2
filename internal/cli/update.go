package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdavis-cyber/lliam-ai-agent/internal/model"
	"github.com/jdavis-cyber/lliam-ai-agent/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Update fields of a memory",
		Long:  "Apply a partial update. Changing content re-embeds the record and rewrites its keyword index entry.",
		Args:  cobra.ExactArgs(1),
		Run:   runUpdate,
	}

	cmd.Flags().String("content", "", "New content")
	cmd.Flags().StringP("category", "c", "", "New category")
	cmd.Flags().Float64("confidence", 0, "New confidence in [0,1]")
	cmd.Flags().StringSliceP("tag", "t", nil, "Replacement tags (repeatable)")

	RootCmd.AddCommand(cmd)
}

func runUpdate(cmd *cobra.Command, args []string) {
	var p store.UpdateParams
	if cmd.Flags().Changed("content") {
		v, _ := cmd.Flags().GetString("content")
		p.Content = &v
	}
	if cmd.Flags().Changed("category") {
		v, _ := cmd.Flags().GetString("category")
		c := model.Category(v)
		p.Category = &c
	}
	if cmd.Flags().Changed("confidence") {
		v, _ := cmd.Flags().GetFloat64("confidence")
		p.Confidence = &v
	}
	if cmd.Flags().Changed("tag") {
		v, _ := cmd.Flags().GetStringSlice("tag")
		p.Tags = &v
	}

	s, eng, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ok, err := eng.Update(cmd.Context(), args[0], p)
	if err != nil {
		exitErr("update", err)
	}
	b, _ := json.Marshal(map[string]bool{"updated": ok})
	fmt.Println(string(b))
}
