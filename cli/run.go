package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"hotissue/pipeline"
)

var (
	runPageStart int
	runPageEnd   int
	runNoDedup   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the collection pipeline once",
	Long: `Collects hot board titles, filters out political posts, aggregates
post details with an LLM summary, and stores the embedded documents in the
vector collection.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&runPageStart, "page-start", 0, "first listing page (overrides config)")
	runCmd.Flags().IntVar(&runPageEnd, "page-end", 0, "last listing page (overrides config)")
	runCmd.Flags().BoolVar(&runNoDedup, "no-dedup", false, "process posts even if seen in an earlier run")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if runPageStart > 0 {
		a.cfg.Board.PageStart = runPageStart
	}
	if runPageEnd > 0 {
		a.cfg.Board.PageEnd = runPageEnd
	}

	var seen pipeline.SeenFilter
	if !runNoDedup {
		store, err := a.openSeenStore()
		if err != nil {
			return err
		}
		defer store.Close()
		seen = store
	}

	p, err := a.buildPipeline(seen)
	if err != nil {
		return err
	}

	summary, err := p.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	cmd.Printf("Run %s finished\n", summary.RunID)
	cmd.Printf("  collected:  %d\n", summary.Collected)
	cmd.Printf("  kept:       %d\n", summary.Kept)
	cmd.Printf("  aggregated: %d\n", summary.Aggregated)
	cmd.Printf("  stored:     %d\n", summary.Stored)
	cmd.Printf("  errors:     %d\n", summary.Errors)
	if summary.File != "" {
		cmd.Printf("  file:       %s\n", summary.File)
	}
	return nil
}
