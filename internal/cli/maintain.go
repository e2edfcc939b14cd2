package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	reembed := &cobra.Command{
		Use:   "reembed",
		Short: "Regenerate all embeddings with the active provider",
		Run:   runReembed,
	}
	reembed.Flags().Int("batch", 16, "Texts per provider call")

	rebuild := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the keyword index from record content",
		Run:   runRebuild,
	}

	RootCmd.AddCommand(reembed, rebuild)
}

func runReembed(cmd *cobra.Command, args []string) {
	batch, _ := cmd.Flags().GetInt("batch")

	s, eng, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := eng.ReembedAll(cmd.Context(), batch)
	if err != nil {
		exitErr("reembed", err)
	}
	b, _ := json.Marshal(map[string]int{"reembedded": n})
	fmt.Println(string(b))
}

func runRebuild(cmd *cobra.Command, args []string) {
	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.RebuildIndex(cmd.Context()); err != nil {
		exitErr("rebuild", err)
	}
	fmt.Println(`{"rebuilt": true}`)
}
