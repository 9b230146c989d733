package cli

import (
	"github.com/spf13/cobra"

	"hotissue/scheduler"
)

var scheduleAt string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the collection pipeline daily at a fixed time",
	Long: `Blocks and fires the collection pipeline every day at the configured
local time. Posts stored by earlier runs are skipped.`,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleAt, "at", "", `daily run time as "HH:MM" (overrides config)`)
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	at := a.cfg.ScheduleAt
	if scheduleAt != "" {
		at = scheduleAt
	}

	seen, err := a.openSeenStore()
	if err != nil {
		return err
	}
	defer seen.Close()

	p, err := a.buildPipeline(seen)
	if err != nil {
		return err
	}

	s, err := scheduler.New(p, at, a.logger)
	if err != nil {
		return err
	}
	return s.Run(cmd.Context())
}
