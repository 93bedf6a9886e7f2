package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the identity registry document to stdout or a file",
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	svc, _, err := newService()
	if err != nil {
		return err
	}

	type record struct {
		Contact  string    `json:"contact"`
		EmployID string    `json:"employ_id"`
		Encoding []float64 `json:"encoding"`
	}
	records := make(map[string]record)
	for name, id := range svc.Store().Snapshot() {
		records[name] = record{
			Contact:  id.Contact,
			EmployID: id.EmployID,
			Encoding: id.Embedding,
		}
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}
	data = append(data, '\n')

	if output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	fmt.Printf("Exported %d identities to %s\n", len(records), output)
	return nil
}
