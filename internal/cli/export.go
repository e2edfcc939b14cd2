package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jdavis-cyber/lliam-ai-agent/internal/model"
)

func init() {
	export := &cobra.Command{
		Use:   "export",
		Short: "Export all memories as JSON",
		Run:   runExport,
	}

	imp := &cobra.Command{
		Use:   "import [file]",
		Short: "Import memories from a JSON export",
		Long:  "Import records from an export file. Imported records get new ids and import provenance; run reembed afterwards to regenerate vectors.",
		Args:  cobra.ExactArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(export, imp)
}

func runExport(cmd *cobra.Command, args []string) {
	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	records, err := s.ExportAll(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(records, "", "  ")
	fmt.Println(string(b))
}

func runImport(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		exitErr("read import file", err)
	}
	var records []model.Memory
	if err := json.Unmarshal(data, &records); err != nil {
		exitErr("parse import file", err)
	}

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.Import(cmd.Context(), records)
	if err != nil {
		exitErr("import", err)
	}
	b, _ := json.Marshal(map[string]int{"imported": n})
	fmt.Println(string(b))
}
