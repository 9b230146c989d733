package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"hotissue/board"
)

var storeCmd = &cobra.Command{
	Use:   "store [file]",
	Short: "Store a saved documents JSON file in the vector collection",
	Long: `Re-embeds the documents from a JSON file written by an earlier run
and upserts them into the vector collection. Useful for backfilling after a
collection recreate.`,
	Args: cobra.ExactArgs(1),
	RunE: runStore,
}

func init() {
	rootCmd.AddCommand(storeCmd)
}

func runStore(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	docs, err := board.LoadDocuments(args[0])
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		cmd.Println("No documents in file.")
		return nil
	}

	p, err := a.buildPipeline(nil)
	if err != nil {
		return err
	}

	stored, failed, err := p.Store(cmd.Context(), docs)
	if err != nil {
		return fmt.Errorf("store failed: %w", err)
	}

	cmd.Printf("Stored %d documents (%d failed) in %s\n",
		stored, failed, a.cfg.CollectionName)
	return nil
}
