package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

var specificUserID string

var specificCmd = &cobra.Command{
	Use:   "translate-specific-remote <kind> <contest> <item_id>",
	Short: "Fetch and translate a single item by reference",
	Long: `Processes one item end to end: task, editorial, or user_editorial.
User editorials additionally need --user-id.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := types.ContentKind(args[0])
		if !kind.Valid() {
			return fmt.Errorf("unknown kind %q (want task, editorial, or user_editorial)", args[0])
		}
		ref := types.ContentRef{ContestID: args[1], ItemID: args[2], UserID: specificUserID}
		if kind == types.KindUserEditorial && ref.UserID == "" {
			return fmt.Errorf("user_editorial needs --user-id")
		}
		if kind != types.KindUserEditorial && ref.UserID != "" {
			return fmt.Errorf("--user-id only applies to user_editorial")
		}

		ctx, cancel := commandContext()
		defer cancel()

		rt, err := newRuntime(ctx, true)
		if err != nil {
			return err
		}
		defer rt.Close()

		rt.pipe.ProcessItem(ctx, kind, ref)
		return rt.finish(ctx)
	},
}

func init() {
	specificCmd.Flags().StringVar(&specificUserID, "user-id", "", "author user id for user_editorial items")
	rootCmd.AddCommand(specificCmd)
}
