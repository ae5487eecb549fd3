// Package publisher persists rendered translations under the languages
// tree and records them in version control.
package publisher

import (
	"os"
	"path/filepath"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

// Store writes and reads translation artifacts relative to the
// repository root. The on-disk layout is
// languages/<lang>/contests/<contest>/<subdir>/<stem>.html.
type Store struct {
	root string
}

// NewStore creates a store rooted at repoRoot.
func NewStore(repoRoot string) *Store {
	return &Store{root: repoRoot}
}

// Root returns the repository root the store writes under.
func (s *Store) Root() string {
	return s.root
}

// RelPath returns the artifact path relative to the repository root,
// using forward slashes. Git operations use this form.
func (s *Store) RelPath(lang string, kind types.ContentKind, ref types.ContentRef) string {
	return "languages/" + lang + "/contests/" + ref.ContestID + "/" + kind.Subdir() + "/" + ref.FileStem() + ".html"
}

// AbsPath returns the artifact path on the local filesystem.
func (s *Store) AbsPath(lang string, kind types.ContentKind, ref types.ContentRef) string {
	return filepath.Join(s.root, filepath.FromSlash(s.RelPath(lang, kind, ref)))
}

// Exists reports whether the artifact has already been published.
func (s *Store) Exists(lang string, kind types.ContentKind, ref types.ContentRef) bool {
	info, err := os.Stat(s.AbsPath(lang, kind, ref))
	return err == nil && !info.IsDir()
}

// Read returns the stored artifact contents.
func (s *Store) Read(lang string, kind types.ContentKind, ref types.ContentRef) (string, error) {
	data, err := os.ReadFile(s.AbsPath(lang, kind, ref))
	if err != nil {
		return "", types.NewAppError(types.ErrPublish, "failed to read artifact "+s.RelPath(lang, kind, ref), err)
	}
	return string(data), nil
}

// Write stores the artifact atomically. The content lands in a temp
// file first so a crash mid-write never leaves a truncated artifact.
func (s *Store) Write(lang string, kind types.ContentKind, ref types.ContentRef, content string) (string, error) {
	rel := s.RelPath(lang, kind, ref)
	abs := s.AbsPath(lang, kind, ref)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", types.NewAppError(types.ErrPublish, "failed to create artifact directory", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(abs), ".artifact-*")
	if err != nil {
		return "", types.NewAppError(types.ErrPublish, "failed to create temp artifact", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", types.NewAppError(types.ErrPublish, "failed to write artifact "+rel, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", types.NewAppError(types.ErrPublish, "failed to close artifact "+rel, err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		os.Remove(tmpName)
		return "", types.NewAppError(types.ErrPublish, "failed to finalize artifact "+rel, err)
	}
	return rel, nil
}
