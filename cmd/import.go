package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/kozaktomas/face-attendance/internal/embedding"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Bulk-enroll identities from a registry document",
	Long: `Bulk-enroll identities from a JSON file in the registry document format:

  {"Alice": {"contact": "555-0100", "employ_id": "E1", "encoding": [...]}}

Each entry goes through the normal enrollment path, so duplicate faces are
rejected entry by entry and every accepted entry lands in the enrollment
audit log.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

type importRecord struct {
	Contact  string    `json:"contact"`
	EmployID string    `json:"employ_id"`
	Encoding []float64 `json:"encoding"`
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}

	var records map[string]importRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse import file: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("Nothing to import.")
		return nil
	}

	svc, _, err := newService()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(records))
	for name := range records {
		names = append(names, name)
	}
	sort.Strings(names)

	bar := progressbar.NewOptions(len(names),
		progressbar.OptionSetDescription("Enrolling"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	var enrolled, duplicates, failed int
	for _, name := range names {
		rec := records[name]
		res, err := svc.Enroll(name, rec.Contact, rec.EmployID, embedding.Vector(rec.Encoding))
		switch {
		case err != nil:
			failed++
			fmt.Fprintf(os.Stderr, "\n%s: %v\n", name, err)
		case res.Status == attendance.StatusDuplicate:
			duplicates++
			fmt.Fprintf(os.Stderr, "\n%s: similar face already registered as %s\n", name, res.Identity.Name)
		default:
			enrolled++
		}
		_ = bar.Add(1)
	}
	fmt.Println()

	fmt.Printf("Enrolled %d, skipped %d duplicates, %d failed.\n", enrolled, duplicates, failed)
	if failed > 0 {
		return fmt.Errorf("%d entries failed to import", failed)
	}
	return nil
}
