package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recall [text]",
		Short: "Recall memories relevant to an utterance",
		Long:  "Run a hybrid search with recall defaults and print the formatted context block.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRecall,
	}

	cmd.Flags().Bool("json", false, "Print results as JSON instead of the text block")

	RootCmd.AddCommand(cmd)
}

func runRecall(cmd *cobra.Command, args []string) {
	asJSON, _ := cmd.Flags().GetBool("json")

	s, eng, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	res, err := eng.Recall(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		exitErr("recall", err)
	}

	if asJSON {
		b, _ := json.MarshalIndent(res, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Println(res.Block)
}
