package cmd

import (
	"fmt"
	"time"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/spf13/cobra"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize",
	Short: "Match a face embedding and record an attendance event",
	Long: `Match a face embedding against all enrolled identities and, on
success, record an attendance event for the recognized person.

The first recognition of a day checks the person in; every later one the
same day records (and re-records) the check-out time.

Examples:
  face-attendance recognize --embedding frame.json
  extract-face frame.jpg | face-attendance recognize --embedding -`,
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().String("embedding", "", "Path to the embedding JSON file (use - for stdin)")
	_ = recognizeCmd.MarkFlagRequired("embedding")
}

func runRecognize(cmd *cobra.Command, args []string) error {
	embeddingPath, _ := cmd.Flags().GetString("embedding")

	vectors, err := readEmbeddings(embeddingPath)
	if err != nil {
		return err
	}
	vec, ok := resolveSingleFace(vectors)
	if !ok {
		return nil
	}

	svc, _, err := newService()
	if err != nil {
		return err
	}

	res, err := svc.Recognize(vec, time.Now())
	if err != nil {
		return err
	}

	switch res.Status {
	case attendance.StatusNotRecognized:
		fmt.Println("User not recognized")
	case attendance.StatusCheckedIn, attendance.StatusCheckedOut:
		fmt.Printf("Face matched with registered user: %s (distance %.3f)\n", res.Identity.Name, res.Distance)
		fmt.Printf("  Contact:   %s\n", res.Identity.Contact)
		fmt.Printf("  Employ ID: %s\n", res.Identity.EmployID)
		fmt.Printf("  Status:    %s\n", res.Status)
	default:
		return fmt.Errorf("unexpected recognition result: %s", res.Status)
	}
	return nil
}
