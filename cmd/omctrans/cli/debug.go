package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/config"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/site"
)

var debugSelector string

var debugPageCmd = &cobra.Command{
	Use:   "debug-page <url>",
	Short: "Report how a content page delivers its body",
	Long: `Fetches the page without a browser and reports whether the content is
present statically, embedded in a script, or only available after
JavaScript runs. Useful when the extractor suddenly finds nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		cfg, err := config.Load(repoRoot)
		if err != nil {
			return err
		}
		client, err := site.NewClient(cfg)
		if err != nil {
			return err
		}
		d, err := client.Inspect(ctx, args[0], debugSelector)
		if err != nil {
			return err
		}
		fmt.Printf("static content:  %v\n", d.StaticContent)
		fmt.Printf("embedded script: %v\n", d.EmbeddedScript)
		if d.Excerpt != "" {
			fmt.Printf("excerpt:\n%s\n", d.Excerpt)
		}
		if !d.StaticContent && !d.EmbeddedScript {
			fmt.Println("content appears to be browser-rendered only")
		}
		return nil
	},
}

func init() {
	debugPageCmd.Flags().StringVar(&debugSelector, "selector", "#problem_content", "content element selector")
	rootCmd.AddCommand(debugPageCmd)
}
