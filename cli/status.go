package cli

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the vector collection status",
	RunE:  runStatus,
}

var recreateCmd = &cobra.Command{
	Use:   "recreate",
	Short: "Delete and recreate the vector collection",
	Long: `Drops the configured collection and creates it empty with the
dimension of the configured embedding backend. All stored documents are
lost, backfill from the saved JSON files with the store command.`,
	RunE: runRecreate,
}

var recreateYes bool

func init() {
	recreateCmd.Flags().BoolVar(&recreateYes, "yes", false, "skip the confirmation check")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(recreateCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	store, err := a.buildStore()
	if err != nil {
		return err
	}

	info, err := store.Info(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("Collection: %s\n", info.Name)
	cmd.Printf("  points:    %d\n", info.Points)
	cmd.Printf("  dimension: %d\n", info.Dimension)
	cmd.Printf("  status:    %s\n", info.Status)
	return nil
}

func runRecreate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if !recreateYes {
		cmd.Printf("This deletes every document in %s. Re-run with --yes to confirm.\n",
			a.cfg.CollectionName)
		return nil
	}

	store, err := a.buildStore()
	if err != nil {
		return err
	}

	if err := store.Recreate(cmd.Context(), a.cfg.Dimension()); err != nil {
		return err
	}
	cmd.Printf("Collection %s recreated (dimension %d)\n",
		a.cfg.CollectionName, a.cfg.Dimension())
	return nil
}
