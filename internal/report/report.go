// Package report collects per-item failures during a pipeline run so a
// single bad item never aborts the rest of the batch.
package report

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/logger"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/types"
)

// Stage names the pipeline step a failure belongs to.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageTranslate Stage = "translate"
	StageRender    Stage = "render"
	StagePublish   Stage = "publish"
	StageSite      Stage = "site"
)

// Failure is one recorded per-item failure.
type Failure struct {
	Stage     Stage           `json:"stage"`
	Ref       string          `json:"ref"`
	Language  string          `json:"language,omitempty"`
	Code      types.ErrorCode `json:"code"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
}

// Ledger accumulates failures across a run. Safe for concurrent use.
type Ledger struct {
	mu       sync.Mutex
	failures []Failure
	log      logger.Logger
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{log: logger.GetLogger()}
}

// Record logs and stores one failure.
func (l *Ledger) Record(stage Stage, ref types.ContentRef, lang string, err error) {
	f := Failure{
		Stage:     stage,
		Ref:       ref.String(),
		Language:  lang,
		Code:      types.CodeOf(err),
		Message:   err.Error(),
		Timestamp: time.Now(),
	}
	l.log.Error("item failed", err,
		logger.String("stage", string(stage)),
		logger.String("ref", f.Ref),
		logger.String("lang", lang),
		logger.String("code", string(f.Code)))

	l.mu.Lock()
	l.failures = append(l.failures, f)
	l.mu.Unlock()
}

// RecordStage stores a failure that is not tied to a single item, like
// a homepage fetch or a git sync.
func (l *Ledger) RecordStage(stage Stage, err error) {
	l.Record(stage, types.ContentRef{}, "", err)
}

// Failures returns a copy of the recorded failures.
func (l *Ledger) Failures() []Failure {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Failure, len(l.failures))
	copy(out, l.failures)
	return out
}

// Empty reports whether the run finished without item failures.
func (l *Ledger) Empty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.failures) == 0
}

// Summarize writes an end-of-run summary to the log.
func (l *Ledger) Summarize() {
	failures := l.Failures()
	if len(failures) == 0 {
		l.log.Info("run completed with no item failures")
		return
	}
	byStage := make(map[Stage]int)
	for _, f := range failures {
		byStage[f.Stage]++
	}
	fields := []logger.Field{logger.Int("total", len(failures))}
	for stage, n := range byStage {
		fields = append(fields, logger.Int(string(stage), n))
	}
	l.log.Warn("run completed with item failures", fields...)
	for _, f := range failures {
		l.log.Warn("  failed item",
			logger.String("stage", string(f.Stage)),
			logger.String("ref", f.Ref),
			logger.String("lang", f.Language),
			logger.String("message", f.Message))
	}
}

// Dump writes the failures as indented JSON, for postmortems.
func (l *Ledger) Dump(path string) error {
	data, err := json.MarshalIndent(l.Failures(), "", "  ")
	if err != nil {
		return types.NewAppError(types.ErrInternal, "failed to marshal failure ledger", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return types.NewAppError(types.ErrInternal, "failed to write failure ledger", err)
	}
	return nil
}
