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
		Use:   "list",
		Short: "List memories",
		Long:  "List memories matching the given filters, newest first.",
		Run:   runList,
	}

	cmd.Flags().StringP("category", "c", "", "Filter by category")
	cmd.Flags().String("source", "", "Filter by source type: manual, auto_capture, import")
	cmd.Flags().String("session", "", "Filter by originating session")
	cmd.Flags().StringP("tag", "t", "", "Filter by tag")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Int("offset", 0, "Skip this many results")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	category, _ := cmd.Flags().GetString("category")
	source, _ := cmd.Flags().GetString("source")
	session, _ := cmd.Flags().GetString("session")
	tag, _ := cmd.Flags().GetString("tag")
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	records, err := s.List(cmd.Context(), store.ListParams{
		Category:   model.Category(category),
		SourceType: model.SourceType(source),
		SessionID:  session,
		Tag:        tag,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		exitErr("list", err)
	}

	if len(records) == 0 {
		fmt.Println("[]")
		return
	}
	b, _ := json.MarshalIndent(records, "", "  ")
	fmt.Println(string(b))
}
