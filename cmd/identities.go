package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/kozaktomas/face-attendance/internal/match"
	"github.com/spf13/cobra"
)

var identitiesCmd = &cobra.Command{
	Use:   "identities",
	Short: "Inspect the registry of enrolled identities",
}

var identitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all enrolled identities",
	RunE:  runIdentitiesList,
}

var identitiesShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one enrolled identity",
	Long: `Show one enrolled identity. The lookup tolerates case and diacritics
("jan novak" finds "Jan Novák") but exact names always win.`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentitiesShow,
}

var identitiesSimilarCmd = &cobra.Command{
	Use:   "similar",
	Short: "List enrolled identities nearest to an embedding",
	Long: `List the enrolled identities nearest to a query embedding, ordered by
distance. Diagnostic helper for tuning enrollment quality; results beyond
the match threshold are listed too, marked as out of range.`,
	RunE: runIdentitiesSimilar,
}

func init() {
	rootCmd.AddCommand(identitiesCmd)
	identitiesCmd.AddCommand(identitiesListCmd)
	identitiesCmd.AddCommand(identitiesShowCmd)
	identitiesCmd.AddCommand(identitiesSimilarCmd)

	identitiesSimilarCmd.Flags().String("embedding", "", "Path to the embedding JSON file (use - for stdin)")
	identitiesSimilarCmd.Flags().IntP("limit", "k", 5, "Number of neighbors to list")
	_ = identitiesSimilarCmd.MarkFlagRequired("embedding")
}

func runIdentitiesList(cmd *cobra.Command, args []string) error {
	svc, _, err := newService()
	if err != nil {
		return err
	}

	identities := svc.Store().All()
	if len(identities) == 0 {
		fmt.Println("No identities enrolled.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCONTACT\tEMPLOY ID\tDIM")
	for _, id := range identities {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", id.Name, id.Contact, id.EmployID, id.Embedding.Dim())
	}
	return w.Flush()
}

func runIdentitiesShow(cmd *cobra.Command, args []string) error {
	svc, _, err := newService()
	if err != nil {
		return err
	}

	id, ok := svc.Store().Find(args[0])
	if !ok {
		return fmt.Errorf("no identity enrolled as %q", args[0])
	}

	fmt.Printf("Name:      %s\n", id.Name)
	fmt.Printf("Contact:   %s\n", id.Contact)
	fmt.Printf("Employ ID: %s\n", id.EmployID)
	fmt.Printf("Embedding: %d dimensions\n", id.Embedding.Dim())
	return nil
}

func runIdentitiesSimilar(cmd *cobra.Command, args []string) error {
	embeddingPath, _ := cmd.Flags().GetString("embedding")
	limit, _ := cmd.Flags().GetInt("limit")

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

	index := match.NewNeighborIndex()
	index.Build(svc.Store().All())

	matches, err := index.Search(vec, limit)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("No identities enrolled.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tDISTANCE\tMATCH")
	for _, m := range matches {
		inRange := ""
		if m.Distance >= svc.Threshold() {
			inRange = "out of range"
		}
		fmt.Fprintf(w, "%s\t%.4f\t%s\n", m.Identity.Name, m.Distance, inRange)
	}
	return w.Flush()
}
