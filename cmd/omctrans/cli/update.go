package cli

import (
	"github.com/spf13/cobra"
)

const past3Count = 3

var updatePast3Cmd = &cobra.Command{
	Use:   "update-past3",
	Short: "Backfill tasks, editorials, and user editorials of the three most recent contests",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		rt, err := newRuntime(ctx, true)
		if err != nil {
			return err
		}
		defer rt.Close()

		ids, err := rt.site.AllContests(ctx)
		if err != nil {
			return err
		}
		if len(ids) > past3Count {
			ids = ids[:past3Count]
		}
		for _, id := range ids {
			rt.pipe.ProcessContest(ctx, id)
		}
		return rt.finish(ctx)
	},
}

var userEditorialsContest string

var updateUserEditorialsCmd = &cobra.Command{
	Use:   "update-user-editorials",
	Short: "Sweep contests for user editorials not yet translated",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		rt, err := newRuntime(ctx, true)
		if err != nil {
			return err
		}
		defer rt.Close()

		var ids []string
		if userEditorialsContest != "" {
			ids = []string{userEditorialsContest}
		} else if ids, err = rt.site.AllContests(ctx); err != nil {
			return err
		}
		for _, id := range ids {
			if ctx.Err() != nil {
				break
			}
			if err := rt.pipe.ProcessUserEditorials(ctx, id); err != nil {
				return err
			}
		}
		return rt.finish(ctx)
	},
}

func init() {
	updateUserEditorialsCmd.Flags().StringVar(&userEditorialsContest, "contest", "", "limit the sweep to one contest id")
	rootCmd.AddCommand(updatePast3Cmd, updateUserEditorialsCmd)
}
