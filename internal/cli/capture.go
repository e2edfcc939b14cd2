package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdavis-cyber/lliam-ai-agent/internal/llm"
)

func init() {
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture facts from a conversation turn",
		Long:  "Extract candidate facts from a user/assistant exchange via a local Ollama model, filter and deduplicate them, and store survivors with auto_capture provenance.",
		Run:   runCapture,
	}

	cmd.Flags().String("user", "", "User message text")
	cmd.Flags().String("assistant", "", "Assistant message text")
	cmd.Flags().String("session", "", "Session id recorded on captured memories")
	cmd.Flags().String("model", "llama3.2", "Ollama model used for extraction")
	cmd.MarkFlagRequired("user")

	RootCmd.AddCommand(cmd)
}

func runCapture(cmd *cobra.Command, args []string) {
	userText, _ := cmd.Flags().GetString("user")
	assistantText, _ := cmd.Flags().GetString("assistant")
	session, _ := cmd.Flags().GetString("session")
	modelName, _ := cmd.Flags().GetString("model")

	s, eng, err := openEngine(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	client := llm.NewOllamaClient(modelName)
	ids, err := eng.CaptureFromConversation(cmd.Context(), userText, assistantText, session, client.Generate)
	if err != nil {
		exitErr("capture", err)
	}

	b, _ := json.Marshal(map[string]any{"captured": len(ids), "ids": ids})
	fmt.Println(string(b))
}
