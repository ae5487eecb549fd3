// Package repair scans the published tree for defective artifacts and
// fixes them in place: stray raw math delimiters, unbalanced math, and
// missed emphasis markup.
package repair

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/config"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/logger"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/markup"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/publisher"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

// Reason classifies why an artifact was flagged.
type Reason string

const (
	// ReasonRawDollars marks rendered output that still shows $ delimiters.
	ReasonRawDollars Reason = "raw_dollars"
	// ReasonUnbalanced marks artifacts whose math delimiters do not pair up.
	ReasonUnbalanced Reason = "unbalanced_math"
)

// Finding is one defective artifact.
type Finding struct {
	RelPath string
	Lang    string
	Reason  Reason
}

// Scanner walks the published language trees looking for defects.
type Scanner struct {
	store *publisher.Store
	log   logger.Logger
}

// NewScanner creates a scanner over the store's tree.
func NewScanner(store *publisher.Store) *Scanner {
	return &Scanner{store: store, log: logger.GetLogger()}
}

// Scan inspects every published translation. Source-language artifacts
// are skipped: they are unrendered by design and keep their KaTeX spans.
func (s *Scanner) Scan() ([]Finding, error) {
	var findings []Finding
	root := filepath.Join(s.store.Root(), "languages")
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}
		rel, err := filepath.Rel(s.store.Root(), path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		lang := langOf(rel)
		if lang == "" || lang == config.SourceLanguage {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		content := string(data)
		switch {
		case markup.HasRawDollars(content):
			findings = append(findings, Finding{RelPath: rel, Lang: lang, Reason: ReasonRawDollars})
		case !markup.Balanced(content):
			findings = append(findings, Finding{RelPath: rel, Lang: lang, Reason: ReasonUnbalanced})
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, types.NewAppError(types.ErrInternal, "scan of published tree failed", err)
	}
	s.log.Info("scan complete", logger.Int("findings", len(findings)))
	return findings, nil
}

// langOf extracts the language code from a languages/<lang>/... path.
func langOf(rel string) string {
	parts := strings.SplitN(rel, "/", 3)
	if len(parts) < 3 || parts[0] != "languages" {
		return ""
	}
	return parts[1]
}

// Renderer matches the pipeline's renderer dependency.
type Renderer interface {
	Render(fragment string) (string, error)
}

// RerenderFindings re-typesets each flagged artifact and overwrites it
// only when the new render succeeds. A failed render leaves the
// published file byte for byte as it was.
func RerenderFindings(store *publisher.Store, render Renderer, findings []Finding) (fixed int, err error) {
	log := logger.GetLogger()
	for _, f := range findings {
		abs := filepath.Join(store.Root(), filepath.FromSlash(f.RelPath))
		data, err := os.ReadFile(abs)
		if err != nil {
			return fixed, types.NewAppError(types.ErrInternal, "failed to read "+f.RelPath, err)
		}
		fragment, err := bodyFragment(string(data))
		if err != nil {
			log.Warn("skipping unparseable artifact", logger.String("path", f.RelPath), logger.Err(err))
			continue
		}
		doc, err := render.Render(fragment)
		if err != nil {
			log.Warn("re-render failed, artifact left unchanged",
				logger.String("path", f.RelPath), logger.Err(err))
			continue
		}
		if err := writeInPlace(abs, doc); err != nil {
			return fixed, err
		}
		fixed++
		log.Info("re-rendered artifact", logger.String("path", f.RelPath))
	}
	return fixed, nil
}

// RepairMarkup fixes stray escaped dollar entities and applies the
// emphasis markup pass to flagged artifacts. Files whose delimiters
// cannot be balanced are left unchanged.
func RepairMarkup(store *publisher.Store, findings []Finding) (fixed int, err error) {
	log := logger.GetLogger()
	for _, f := range findings {
		abs := filepath.Join(store.Root(), filepath.FromSlash(f.RelPath))
		data, err := os.ReadFile(abs)
		if err != nil {
			return fixed, types.NewAppError(types.ErrInternal, "failed to read "+f.RelPath, err)
		}
		content := string(data)
		repaired, ok := markup.RepairStrayDollars(content)
		if !ok && !markup.Balanced(content) {
			log.Warn("delimiters cannot be balanced, artifact left unchanged",
				logger.String("path", f.RelPath))
			continue
		}
		next := markup.ApplyMarkdown(repaired)
		if next == content {
			continue
		}
		if err := writeInPlace(abs, next); err != nil {
			return fixed, err
		}
		fixed++
		log.Info("repaired markup", logger.String("path", f.RelPath))
	}
	return fixed, nil
}

// bodyFragment extracts the body inner HTML of a published document.
func bodyFragment(doc string) (string, error) {
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(doc))
	if err != nil {
		return "", types.NewAppError(types.ErrInternal, "artifact is not parseable HTML", err)
	}
	inner, err := parsed.Find("body").Html()
	if err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to serialize artifact body", err)
	}
	return inner, nil
}

// writeInPlace replaces an artifact through a temp file and rename.
func writeInPlace(abs, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(abs), ".repair-*")
	if err != nil {
		return types.NewAppError(types.ErrInternal, "failed to stage repaired artifact", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return types.NewAppError(types.ErrInternal, "failed to write repaired artifact", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return types.NewAppError(types.ErrInternal, "failed to close repaired artifact", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		os.Remove(tmpName)
		return types.NewAppError(types.ErrInternal, "failed to replace artifact", err)
	}
	return nil
}
