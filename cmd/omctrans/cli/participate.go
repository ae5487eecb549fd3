package cli

import (
	"github.com/spf13/cobra"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/logger"
)

var participateCmd = &cobra.Command{
	Use:   "participate-today",
	Short: "Log in and join every contest currently open for entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		rt, err := newRuntime(ctx, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.cfg.RequireCredentials(); err != nil {
			return err
		}
		if err := rt.site.Login(ctx, rt.cfg.Username, rt.cfg.Password); err != nil {
			return err
		}
		running, err := rt.site.RunningContests(ctx)
		if err != nil {
			return err
		}
		if len(running) == 0 {
			logger.Info("no contests open for entry")
			return nil
		}
		for _, id := range running {
			joined, err := rt.site.Join(ctx, id)
			if err != nil {
				return err
			}
			logger.Info("contest registration",
				logger.String("contest", id), logger.Bool("joined", joined))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(participateCmd)
}
