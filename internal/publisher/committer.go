package publisher

import (
	"context"
	"errors"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/logger"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

const (
	commitAuthorName  = "github-actions[bot]"
	commitAuthorEmail = "github-actions[bot]@users.noreply.github.com"
)

// Committer records published artifacts in version control. Each
// artifact gets its own commit so a partial run still leaves every
// finished item durable.
type Committer interface {
	// CommitFile stages relPath (relative to the repository root) and
	// commits it with message.
	CommitFile(ctx context.Context, relPath, message string) error
	// Sync reconciles with the remote: pull then push.
	Sync(ctx context.Context) error
}

// GitCommitter commits to a local working tree and pushes over HTTPS
// with token auth.
type GitCommitter struct {
	repo  *git.Repository
	token string
	log   logger.Logger
}

// NewGitCommitter opens the repository at repoRoot. The token is used
// as the password for pushes; pass "" for an unauthenticated remote.
func NewGitCommitter(repoRoot, token string) (*GitCommitter, error) {
	repo, err := git.PlainOpen(repoRoot)
	if err != nil {
		return nil, types.NewAppError(types.ErrPublish, "failed to open git repository at "+repoRoot, err)
	}
	return &GitCommitter{repo: repo, token: token, log: logger.GetLogger()}, nil
}

// CommitFile implements Committer.
func (g *GitCommitter) CommitFile(ctx context.Context, relPath, message string) error {
	wt, err := g.repo.Worktree()
	if err != nil {
		return types.NewAppError(types.ErrPublish, "failed to open worktree", err)
	}
	if _, err := wt.Add(relPath); err != nil {
		return types.NewAppError(types.ErrPublish, "failed to stage "+relPath, err)
	}
	status, err := wt.Status()
	if err != nil {
		return types.NewAppError(types.ErrPublish, "failed to read worktree status", err)
	}
	if status.IsClean() {
		g.log.Debug("nothing to commit", logger.String("path", relPath))
		return nil
	}
	_, err = wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  commitAuthorName,
			Email: commitAuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return types.NewAppError(types.ErrPublish, "failed to commit "+relPath, err)
	}
	g.log.Info("committed artifact", logger.String("path", relPath))
	return nil
}

// Sync implements Committer. Pull failures other than "already up to
// date" are returned so the caller can decide whether to keep going.
func (g *GitCommitter) Sync(ctx context.Context) error {
	wt, err := g.repo.Worktree()
	if err != nil {
		return types.NewAppError(types.ErrPublish, "failed to open worktree", err)
	}
	err = wt.PullContext(ctx, &git.PullOptions{Auth: g.auth()})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) && !errors.Is(err, transport.ErrEmptyRemoteRepository) {
		return types.NewAppError(types.ErrPublish, "git pull failed", err)
	}
	err = g.repo.PushContext(ctx, &git.PushOptions{Auth: g.auth()})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return types.NewAppError(types.ErrPublish, "git push failed", err)
	}
	return nil
}

func (g *GitCommitter) auth() transport.AuthMethod {
	if g.token == "" {
		return nil
	}
	// GitHub accepts any non-empty username with a token password.
	return &http.BasicAuth{Username: commitAuthorName, Password: g.token}
}

// NopCommitter discards commits. Used when publishing to a plain
// directory without version control.
type NopCommitter struct{}

// CommitFile implements Committer.
func (NopCommitter) CommitFile(context.Context, string, string) error { return nil }

// Sync implements Committer.
func (NopCommitter) Sync(context.Context) error { return nil }
