package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete memories",
		Long:  "Delete a memory by id, or every memory from a session with --session.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runRm,
	}

	cmd.Flags().String("session", "", "Delete all memories captured from this session")

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	session, _ := cmd.Flags().GetString("session")

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if session != "" {
		n, err := s.DeleteBySession(cmd.Context(), session)
		if err != nil {
			exitErr("rm", err)
		}
		b, _ := json.Marshal(map[string]int{"deleted": n})
		fmt.Println(string(b))
		return
	}

	if len(args) == 0 {
		exitErr("rm", fmt.Errorf("an id or --session is required"))
	}
	ok, err := s.Delete(cmd.Context(), args[0])
	if err != nil {
		exitErr("rm", err)
	}
	b, _ := json.Marshal(map[string]bool{"deleted": ok})
	fmt.Println(string(b))
}
