package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/browser"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/config"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/publisher"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/renderer"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/repair"
)

var repairScanCmd = &cobra.Command{
	Use:   "repair-scan",
	Short: "List published artifacts with leftover or unbalanced math delimiters",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(repoRoot)
		if err != nil {
			return err
		}
		findings, err := repair.NewScanner(publisher.NewStore(cfg.RepoRoot)).Scan()
		if err != nil {
			return err
		}
		for _, f := range findings {
			fmt.Printf("%s\t%s\n", f.Reason, f.RelPath)
		}
		fmt.Printf("%d defective artifact(s)\n", len(findings))
		return nil
	},
}

var repairRenderCmd = &cobra.Command{
	Use:   "repair-render",
	Short: "Re-typeset defective artifacts, keeping the old file on failure",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		cfg, err := config.Load(repoRoot)
		if err != nil {
			return err
		}
		store := publisher.NewStore(cfg.RepoRoot)
		findings, err := repair.NewScanner(store).Scan()
		if err != nil {
			return err
		}
		if len(findings) == 0 {
			fmt.Println("nothing to repair")
			return nil
		}
		session, err := browser.NewSession(ctx, cfg.BrowserTimeout)
		if err != nil {
			return err
		}
		defer session.Close()

		fixed, err := repair.RerenderFindings(store, renderer.New(session, ""), findings)
		if err != nil {
			return err
		}
		fmt.Printf("re-rendered %d of %d artifact(s)\n", fixed, len(findings))
		return nil
	},
}

var repairMarkupCmd = &cobra.Command{
	Use:   "repair-markup",
	Short: "Fix stray dollar entities and missed emphasis markup in place",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(repoRoot)
		if err != nil {
			return err
		}
		store := publisher.NewStore(cfg.RepoRoot)
		findings, err := repair.NewScanner(store).Scan()
		if err != nil {
			return err
		}
		fixed, err := repair.RepairMarkup(store, findings)
		if err != nil {
			return err
		}
		fmt.Printf("repaired %d of %d artifact(s)\n", fixed, len(findings))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(repairScanCmd, repairRenderCmd, repairMarkupCmd)
}
