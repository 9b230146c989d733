package cli

import (
	"github.com/spf13/cobra"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored documents by similarity",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 5, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	store, err := a.buildStore()
	if err != nil {
		return err
	}

	vec, err := a.buildEmbedder().Embed(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	results, err := store.Search(cmd.Context(), vec, searchLimit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, r := range results {
		cmd.Printf("%d. %s (%.3f)\n", i+1, r.Doc.Title, r.Score)
		cmd.Printf("   %s\n", r.Doc.Link)
		cmd.Printf("   collected: %s\n", r.Doc.CollectedDate)
	}
	return nil
}
