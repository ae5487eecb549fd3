// Package cli wires the omctrans commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/browser"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/config"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/logger"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/pipeline"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/publisher"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/renderer"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/report"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/site"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/translator"
)

var (
	repoRoot    string
	logFile     string
	verbose     bool
	noCommit    bool
	contentsAPI string
)

var rootCmd = &cobra.Command{
	Use:           "omctrans",
	Short:         "Fetches, translates, and publishes OMC problems and editorials",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logCfg := logger.DefaultConfig()
		if logFile != "" {
			logCfg.LogFilePath = logFile
		}
		if verbose {
			logCfg.Level = logger.LevelDebug
		}
		return logger.Init(logCfg)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&repoRoot, "repo", ".", "path to the translations repository")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file path (default omc-translations.log)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noCommit, "no-commit", false, "publish to the local tree without committing")
	rootCmd.PersistentFlags().StringVar(&contentsAPI, "contents-api", "",
		"publish through the GitHub Contents API instead of a local clone (owner/repo)")
}

// Execute runs the root command.
func Execute() {
	defer logger.Close()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// commandContext cancels on SIGINT/SIGTERM so git state and the browser
// shut down cleanly.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// runtime bundles the long-lived components most commands share.
type runtime struct {
	cfg       *config.Config
	site      *site.Client
	session   *browser.Session
	store     *publisher.Store
	committer publisher.Committer
	ledger    *report.Ledger
	pipe      *pipeline.Pipeline
}

// newRuntime assembles the full pipeline. translation controls whether
// the LLM and browser are required; commands that only talk to the
// site pass false.
func newRuntime(ctx context.Context, translation bool) (*runtime, error) {
	cfg, err := config.Load(repoRoot)
	if err != nil {
		return nil, err
	}
	siteClient, err := site.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		cfg:    cfg,
		site:   siteClient,
		store:  publisher.NewStore(cfg.RepoRoot),
		ledger: report.NewLedger(),
	}
	rt.committer, err = newCommitter(cfg)
	if err != nil {
		return nil, err
	}

	if !translation {
		rt.pipe = pipeline.New(siteClient, nil, nil, nil, rt.store, rt.committer, cfg.Languages, rt.ledger)
		return rt, nil
	}

	if err := cfg.RequireTranslation(); err != nil {
		return nil, err
	}
	rt.session, err = browser.NewSession(ctx, cfg.BrowserTimeout)
	if err != nil {
		return nil, err
	}
	engine, err := translator.NewEngine(ctx, cfg)
	if err != nil {
		rt.session.Close()
		return nil, err
	}
	render := renderer.New(rt.session, "")
	rt.pipe = pipeline.New(siteClient, rt.session, engine, render, rt.store, rt.committer, cfg.Languages, rt.ledger)
	return rt, nil
}

func newCommitter(cfg *config.Config) (publisher.Committer, error) {
	if noCommit {
		return publisher.NopCommitter{}, nil
	}
	if contentsAPI != "" {
		owner, repo, ok := strings.Cut(contentsAPI, "/")
		if !ok || owner == "" || repo == "" {
			return nil, fmt.Errorf("--contents-api wants owner/repo, got %q", contentsAPI)
		}
		return publisher.NewContentsAPICommitter(cfg.GitHubToken, owner, repo, cfg.RepoRoot), nil
	}
	return publisher.NewGitCommitter(cfg.RepoRoot, cfg.GitHubToken)
}

// Close releases the runtime's browser session.
func (rt *runtime) Close() {
	if rt.session != nil {
		rt.session.Close()
	}
}

// finish prints the failure summary and syncs the repository. Item
// failures do not fail the command; only phase-level errors do.
func (rt *runtime) finish(ctx context.Context) error {
	rt.ledger.Summarize()
	return rt.committer.Sync(ctx)
}
