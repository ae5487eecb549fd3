package publisher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

func initRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	return dir, repo
}

func TestGitCommitterCommitFile(t *testing.T) {
	dir, repo := initRepo(t)

	store := NewStore(dir)
	ref := types.ContentRef{ContestID: "omc249", ItemID: "11404"}
	rel, err := store.Write("en", types.KindTask, ref, "<p>content</p>")
	require.NoError(t, err)

	committer, err := NewGitCommitter(dir, "")
	require.NoError(t, err)
	require.NoError(t, committer.CommitFile(context.Background(), rel, "Add task omc249/11404 (en)"))

	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)

	assert.Equal(t, "Add task omc249/11404 (en)", commit.Message)
	assert.Equal(t, commitAuthorName, commit.Author.Name)
	assert.Equal(t, commitAuthorEmail, commit.Author.Email)

	// The committed tree holds the artifact.
	tree, err := commit.Tree()
	require.NoError(t, err)
	_, err = tree.File(rel)
	assert.NoError(t, err)
}

func TestGitCommitterNothingToCommit(t *testing.T) {
	dir, repo := initRepo(t)

	path := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	committer, err := NewGitCommitter(dir, "")
	require.NoError(t, err)
	require.NoError(t, committer.CommitFile(context.Background(), "file.txt", "first"))

	// Committing the unchanged file again is a no-op, not an error.
	require.NoError(t, committer.CommitFile(context.Background(), "file.txt", "second"))

	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	assert.Equal(t, "first", commit.Message)
}

func TestNewGitCommitterMissingRepo(t *testing.T) {
	_, err := NewGitCommitter(t.TempDir(), "")
	require.Error(t, err)
	assert.Equal(t, types.ErrPublish, types.CodeOf(err))
}

func TestNopCommitter(t *testing.T) {
	var c NopCommitter
	assert.NoError(t, c.CommitFile(context.Background(), "x", "y"))
	assert.NoError(t, c.Sync(context.Background()))
}
