// Package pipeline drives one content item from the contest site to a
// published, rendered translation artifact.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/config"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/logger"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/markup"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/publisher"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/report"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/site"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

// ContentFetcher extracts content from a live page: the inner HTML of a
// selected element, or the page's global `content` variable, which some
// pages fill before any element renders. *browser.Session satisfies it.
type ContentFetcher interface {
	InnerHTML(url, selector string) (string, error)
	GlobalContent(url string) (string, error)
}

// Translator converts an HTML fragment into a target language without
// touching math spans. *translator.Engine satisfies it.
type Translator interface {
	Translate(ctx context.Context, html, term, lang string) (string, error)
}

// Renderer typesets a fragment's math into a standalone document.
// *renderer.Renderer satisfies it.
type Renderer interface {
	Render(fragment string) (string, error)
}

// Pipeline wires the site client, browser, translator, renderer, and
// publisher into the per-item flow.
type Pipeline struct {
	site      *site.Client
	fetcher   ContentFetcher
	trans     Translator
	render    Renderer
	store     *publisher.Store
	committer publisher.Committer
	langs     config.Languages
	ledger    *report.Ledger
	log       logger.Logger
}

// New assembles a pipeline. langs must already be ordered with English
// first; the source language is handled separately.
func New(siteClient *site.Client, fetcher ContentFetcher, trans Translator, render Renderer,
	store *publisher.Store, committer publisher.Committer, langs config.Languages, ledger *report.Ledger) *Pipeline {
	return &Pipeline{
		site:      siteClient,
		fetcher:   fetcher,
		trans:     trans,
		render:    render,
		store:     store,
		committer: committer,
		langs:     langs,
		ledger:    ledger,
		log:       logger.GetLogger(),
	}
}

// SaveOriginal fetches the source-language content from the live page
// and publishes it unrendered. Existing artifacts are left alone so
// re-runs resume instead of refetching.
func (p *Pipeline) SaveOriginal(ctx context.Context, kind types.ContentKind, ref types.ContentRef) error {
	if p.store.Exists(config.SourceLanguage, kind, ref) {
		p.log.Debug("original already saved", logger.String("ref", ref.String()))
		return nil
	}
	pageURL := p.site.ContentURL(kind, ref)
	fragment, err := p.fetcher.InnerHTML(pageURL, kind.Selector())
	if err != nil || strings.TrimSpace(fragment) == "" {
		// Some pages keep the element empty and carry the markup in a
		// global `content` variable instead.
		fragment, err = p.fetcher.GlobalContent(pageURL)
		if err == nil && strings.TrimSpace(fragment) == "" {
			err = types.NewAppError(types.ErrFetch, "page delivered no content", nil)
		}
	}
	if err != nil {
		return types.NewAppError(types.ErrFetch, "failed to fetch "+kind.Term()+" "+ref.String(), err)
	}
	rel, err := p.store.Write(config.SourceLanguage, kind, ref, fragment)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Add %s %s (%s)", kind.Term(), ref.String(), config.SourceLanguage)
	if err := p.committer.CommitFile(ctx, rel, msg); err != nil {
		return err
	}
	p.log.Info("saved original", logger.String("ref", ref.String()), logger.String("kind", string(kind)))
	return nil
}

// TranslateItem produces the lang artifact for one item from its saved
// original. The artifact is written only after a successful render, so
// a failure never clobbers a previously published file.
func (p *Pipeline) TranslateItem(ctx context.Context, kind types.ContentKind, ref types.ContentRef, lang string) error {
	if p.store.Exists(lang, kind, ref) {
		p.log.Debug("translation already published",
			logger.String("ref", ref.String()), logger.String("lang", lang))
		return nil
	}
	original, err := p.store.Read(config.SourceLanguage, kind, ref)
	if err != nil {
		return err
	}
	norm, err := markup.Normalize(original)
	if err != nil {
		return types.NewAppError(types.ErrTranslation, "failed to normalize "+ref.String(), err)
	}
	if norm.Unbalanced {
		p.log.Warn("math delimiters unbalanced, publishing without emphasis markup",
			logger.String("ref", ref.String()))
	}
	translated, err := p.trans.Translate(ctx, norm.HTML, kind.Term(), lang)
	if err != nil {
		return err
	}
	doc, err := p.render.Render(translated)
	if err != nil {
		return err
	}
	rel, err := p.store.Write(lang, kind, ref, doc)
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("Add %s %s (%s)", kind.Term(), ref.String(), lang)
	if err := p.committer.CommitFile(ctx, rel, msg); err != nil {
		return err
	}
	p.log.Info("published translation",
		logger.String("ref", ref.String()), logger.String("lang", lang))
	return nil
}

// ProcessItem runs the full per-item flow: save the original, then
// translate into every configured language, English first. Language
// failures are recorded and do not stop the remaining languages. The
// contest drivers go through ProcessBatch instead; this is the
// single-item entry point.
func (p *Pipeline) ProcessItem(ctx context.Context, kind types.ContentKind, ref types.ContentRef) {
	if err := p.SaveOriginal(ctx, kind, ref); err != nil {
		p.ledger.Record(report.StageFetch, ref, config.SourceLanguage, err)
		return
	}
	for _, lang := range p.langs {
		if lang == config.SourceLanguage {
			continue
		}
		if err := ctx.Err(); err != nil {
			return
		}
		if err := p.TranslateItem(ctx, kind, ref, lang); err != nil {
			p.ledger.Record(stageOf(err), ref, lang, err)
		}
	}
}

// ProcessBatch saves every original, then translates the whole batch in
// language rounds: the English round covers every item before any other
// language starts, and each round keeps item order. Failures are
// recorded and skip only that (item, language) pair; an item whose
// original cannot be saved is dropped from every round.
func (p *Pipeline) ProcessBatch(ctx context.Context, kind types.ContentKind, refs []types.ContentRef) {
	saved := make([]types.ContentRef, 0, len(refs))
	for _, ref := range refs {
		if ctx.Err() != nil {
			return
		}
		if err := p.SaveOriginal(ctx, kind, ref); err != nil {
			p.ledger.Record(report.StageFetch, ref, config.SourceLanguage, err)
			continue
		}
		saved = append(saved, ref)
	}
	for _, lang := range p.langs {
		if lang == config.SourceLanguage {
			continue
		}
		for _, ref := range saved {
			if ctx.Err() != nil {
				return
			}
			if err := p.TranslateItem(ctx, kind, ref, lang); err != nil {
				p.ledger.Record(stageOf(err), ref, lang, err)
			}
		}
	}
}

// ProcessTasks fetches the contest's task list and processes the tasks
// as one batch.
func (p *Pipeline) ProcessTasks(ctx context.Context, contestID string) error {
	ids, err := p.site.TaskIDs(ctx, contestID)
	if err != nil {
		return err
	}
	p.log.Info("processing tasks",
		logger.String("contest", contestID), logger.Int("count", len(ids)))
	p.ProcessBatch(ctx, types.KindTask, taskRefs(contestID, ids))
	return nil
}

// ProcessEditorials processes the official editorial of every task in
// the contest as one batch.
func (p *Pipeline) ProcessEditorials(ctx context.Context, contestID string) error {
	ids, err := p.site.TaskIDs(ctx, contestID)
	if err != nil {
		return err
	}
	p.log.Info("processing editorials",
		logger.String("contest", contestID), logger.Int("count", len(ids)))
	p.ProcessBatch(ctx, types.KindEditorial, taskRefs(contestID, ids))
	return nil
}

// ProcessUserEditorials discovers and processes the contest's user
// editorials as one batch. The official editorial link is excluded by
// discovery.
func (p *Pipeline) ProcessUserEditorials(ctx context.Context, contestID string) error {
	refs, err := p.site.UserEditorialRefs(ctx, contestID)
	if err != nil {
		return err
	}
	p.log.Info("processing user editorials",
		logger.String("contest", contestID), logger.Int("count", len(refs)))
	p.ProcessBatch(ctx, types.KindUserEditorial, refs)
	return nil
}

func taskRefs(contestID string, ids []string) []types.ContentRef {
	refs := make([]types.ContentRef, len(ids))
	for i, id := range ids {
		refs[i] = types.ContentRef{ContestID: contestID, ItemID: id}
	}
	return refs
}

// ProcessContest runs tasks, then editorials, then user editorials for
// one contest. Used by the backfill pass over past contests.
func (p *Pipeline) ProcessContest(ctx context.Context, contestID string) {
	if err := p.ProcessTasks(ctx, contestID); err != nil {
		p.ledger.RecordStage(report.StageSite, err)
	}
	if err := p.ProcessEditorials(ctx, contestID); err != nil {
		p.ledger.RecordStage(report.StageSite, err)
	}
	if err := p.ProcessUserEditorials(ctx, contestID); err != nil {
		p.ledger.RecordStage(report.StageSite, err)
	}
}

// stageOf maps an error's code to the pipeline stage it belongs to.
func stageOf(err error) report.Stage {
	switch types.CodeOf(err) {
	case types.ErrFetch, types.ErrNetwork:
		return report.StageFetch
	case types.ErrTranslation:
		return report.StageTranslate
	case types.ErrRender:
		return report.StageRender
	case types.ErrPublish:
		return report.StagePublish
	}
	return report.StageTranslate
}
