package cmd

import (
	"fmt"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <name>",
	Short: "Register a new identity from a face embedding",
	Long: `Register a new identity in the face registry.

The embedding comes from the external extraction stage as a JSON array of
floats (or an array of such arrays, one per detected face). Enrollment is
rejected when any already-enrolled face is within the match threshold of
the new one, or when the frame did not contain exactly one face.

Examples:
  # Enroll from an extractor output file
  face-attendance enroll "Alice" --contact 555-0100 --employ-id E1 --embedding alice.json

  # Pipe the extractor output in
  extract-face frame.jpg | face-attendance enroll "Alice" --embedding -`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("embedding", "", "Path to the embedding JSON file (use - for stdin)")
	enrollCmd.Flags().String("contact", "", "Contact number")
	enrollCmd.Flags().String("employ-id", "", "Employ ID")
	_ = enrollCmd.MarkFlagRequired("embedding")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	name := args[0]
	embeddingPath, _ := cmd.Flags().GetString("embedding")
	contact, _ := cmd.Flags().GetString("contact")
	employID, _ := cmd.Flags().GetString("employ-id")

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

	res, err := svc.Enroll(name, contact, employID, vec)
	if err != nil {
		return err
	}

	switch res.Status {
	case attendance.StatusDuplicate:
		fmt.Printf("Similar face already registered as %s (distance %.3f). Skipping registration.\n",
			res.Identity.Name, res.Distance)
	case attendance.StatusEnrolled:
		fmt.Printf("User %s registered successfully!\n", name)
	default:
		return fmt.Errorf("unexpected enrollment result: %s", res.Status)
	}
	return nil
}
