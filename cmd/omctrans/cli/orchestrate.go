package cli

import (
	"github.com/spf13/cobra"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/orchestrator"
)

var orchestrateCmd = &cobra.Command{
	Use:   "orchestrate-daily",
	Short: "Run the full contest-day schedule",
	Long: `Runs the whole contest day: waits until 20:00 JST to register, until
21:00 JST to fetch tasks, sits out the contest, then fetches editorials,
backfills the recent contests, and on refresh days re-sweeps user
editorials. Safe to start at any time of day.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		rt, err := newRuntime(ctx, true)
		if err != nil {
			return err
		}
		defer rt.Close()

		orch := orchestrator.New(rt.cfg, rt.site, rt.pipe, rt.committer, rt.ledger, nil)
		return orch.RunDaily(ctx)
	},
}

func init() {
	rootCmd.AddCommand(orchestrateCmd)
}
