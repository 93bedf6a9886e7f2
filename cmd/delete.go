package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/kozaktomas/face-attendance/internal/attendance"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove an enrolled identity",
	Long: `Remove an identity from the face registry, either by matching a face
embedding (the closest enrolled face within the threshold is deleted, after
confirmation) or by exact name with --name.

Attendance history is never deleted; only the registry entry is removed.

Examples:
  face-attendance delete --embedding frame.json
  face-attendance delete --embedding frame.json --yes
  face-attendance delete --name "Alice"`,
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().String("embedding", "", "Path to the embedding JSON file (use - for stdin)")
	deleteCmd.Flags().String("name", "", "Delete by exact name instead of by face")
	deleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	embeddingPath, _ := cmd.Flags().GetString("embedding")
	name, _ := cmd.Flags().GetString("name")
	yes, _ := cmd.Flags().GetBool("yes")

	if (embeddingPath == "") == (name == "") {
		return fmt.Errorf("exactly one of --embedding or --name is required")
	}

	svc, _, err := newService()
	if err != nil {
		return err
	}

	if name != "" {
		res, err := svc.DeleteByName(name)
		if err != nil {
			return err
		}
		if res.Status == attendance.StatusNotFound {
			fmt.Printf("No user registered as %s\n", name)
			return nil
		}
		fmt.Printf("User %s's data has been deleted.\n", name)
		return nil
	}

	vectors, err := readEmbeddings(embeddingPath)
	if err != nil {
		return err
	}
	vec, ok := resolveSingleFace(vectors)
	if !ok {
		return nil
	}

	// Resolve the match first so the operator confirms a concrete person.
	// The actual delete re-matches under the service lock; between the two
	// only this process mutates the registry.
	preview, err := svc.DeleteCandidate(vec)
	if err != nil {
		return err
	}
	if preview == nil {
		fmt.Println("User not recognized")
		return nil
	}

	if !yes && !confirm(fmt.Sprintf("Delete user %s's data?", preview.Name)) {
		fmt.Println("Deletion canceled.")
		return nil
	}

	res, err := svc.DeleteByFace(vec)
	if err != nil {
		return err
	}
	if res.Status == attendance.StatusNotRecognized {
		fmt.Println("User not recognized")
		return nil
	}
	fmt.Printf("User %s's data has been deleted.\n", res.Identity.Name)
	return nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
