package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

var (
	fetchContest     string
	fetchContestJSON string
	editorialContest string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch-and-translate",
	Short: "Fetch a contest's tasks and publish their translations",
	Long: `Fetches every task of the target contest, saves the originals, and
publishes translations into each configured language. Without flags the
target is the currently running contest, falling back to the most
recently ended one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		rt, err := newRuntime(ctx, true)
		if err != nil {
			return err
		}
		defer rt.Close()

		contests, err := targetContests(ctx, rt)
		if err != nil {
			return err
		}
		for _, id := range contests {
			if err := rt.pipe.ProcessTasks(ctx, id); err != nil {
				return err
			}
		}
		return rt.finish(ctx)
	},
}

var editorialCmd = &cobra.Command{
	Use:   "fetch-editorial",
	Short: "Fetch and translate a contest's editorials and user editorials",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext()
		defer cancel()

		rt, err := newRuntime(ctx, true)
		if err != nil {
			return err
		}
		defer rt.Close()

		id := editorialContest
		if id == "" {
			id, err = rt.site.LatestEndedContest(ctx)
			if err != nil {
				return err
			}
		}
		if err := rt.pipe.ProcessEditorials(ctx, id); err != nil {
			return err
		}
		if err := rt.pipe.ProcessUserEditorials(ctx, id); err != nil {
			return err
		}
		return rt.finish(ctx)
	},
}

// targetContests resolves the fetch command's target list from flags or
// site discovery.
func targetContests(ctx context.Context, rt *runtime) ([]string, error) {
	if fetchContest != "" {
		return []string{fetchContest}, nil
	}
	if fetchContestJSON != "" {
		return contestsFromJSON(fetchContestJSON)
	}
	running, err := rt.site.RunningContests(ctx)
	if err != nil {
		return nil, err
	}
	if len(running) > 0 {
		return running, nil
	}
	latest, err := rt.site.LatestEndedContest(ctx)
	if err != nil {
		return nil, err
	}
	return []string{latest}, nil
}

// contestsFromJSON reads contest targets from a file holding either a
// JSON array of ids or an array of contest objects with an "id" field.
func contestsFromJSON(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to read contest file "+path, err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err == nil {
		return ids, nil
	}
	var infos []types.ContestInfo
	if err := json.Unmarshal(data, &infos); err != nil {
		return nil, types.NewAppError(types.ErrConfig, "contest file is neither an id list nor a contest list", err)
	}
	ids = make([]string, 0, len(infos))
	for _, info := range infos {
		if info.ID != "" {
			ids = append(ids, info.ID)
		}
	}
	return ids, nil
}

func init() {
	fetchCmd.Flags().StringVar(&fetchContest, "contest", "", "contest id to fetch")
	fetchCmd.Flags().StringVar(&fetchContestJSON, "contest-json", "", "JSON file naming the contests to fetch")
	editorialCmd.Flags().StringVar(&editorialContest, "contest", "", "contest id (default: latest ended)")
	rootCmd.AddCommand(fetchCmd, editorialCmd)
}
