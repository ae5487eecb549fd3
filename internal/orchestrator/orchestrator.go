// Package orchestrator sequences the daily contest-day schedule:
// register, fetch tasks, wait out the contest, fetch editorials, and
// backfill recent contests.
package orchestrator

import (
	"context"
	"time"

	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/config"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/logger"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/pipeline"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/publisher"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/report"
	"github.com/yuyuuuuuuuuuuuu/omc-translations/internal/site"
)

// Phase names the orchestrator's current position in the daily run.
type Phase string

const (
	PhaseIdle                    Phase = "idle"
	PhaseRegistering             Phase = "registering"
	PhaseFetchingTasks           Phase = "fetching_tasks"
	PhaseWaitingForContestEnd    Phase = "waiting_for_contest_end"
	PhaseFetchingEditorials      Phase = "fetching_editorials"
	PhaseBackfillingPast         Phase = "backfilling_past"
	PhaseRefreshingUserEditorial Phase = "refreshing_user_editorials"
)

const (
	registerHour  = 20
	contestHour   = 21
	backfillCount = 3
)

// Orchestrator runs the daily schedule. Phase failures are recorded
// and the run moves on; only context cancellation stops it.
type Orchestrator struct {
	cfg       *config.Config
	site      *site.Client
	pipe      *pipeline.Pipeline
	committer publisher.Committer
	ledger    *report.Ledger
	clock     Clock
	log       logger.Logger

	phase Phase
}

// New assembles an orchestrator.
func New(cfg *config.Config, siteClient *site.Client, pipe *pipeline.Pipeline,
	committer publisher.Committer, ledger *report.Ledger, clock Clock) *Orchestrator {
	if clock == nil {
		clock = NewClock()
	}
	return &Orchestrator{
		cfg:       cfg,
		site:      siteClient,
		pipe:      pipe,
		committer: committer,
		ledger:    ledger,
		clock:     clock,
		log:       logger.GetLogger(),
		phase:     PhaseIdle,
	}
}

// Phase returns the current phase, for status reporting.
func (o *Orchestrator) Phase() Phase { return o.phase }

func (o *Orchestrator) enter(phase Phase) {
	o.phase = phase
	o.log.Info("entering phase", logger.String("phase", string(phase)))
}

// RunDaily executes one full contest day. It is safe to start at any
// time of day: past trigger times are not waited for again.
func (o *Orchestrator) RunDaily(ctx context.Context) error {
	if err := o.sleepUntilHour(ctx, registerHour); err != nil {
		return err
	}
	o.enter(PhaseRegistering)
	contestID := o.register(ctx)

	if err := o.sleepUntilHour(ctx, contestHour); err != nil {
		return err
	}
	if contestID == "" {
		// Registration may have run before the contest appeared.
		contestID = o.findRunningContest(ctx)
	}

	var durationMin int
	if contestID != "" {
		o.enter(PhaseFetchingTasks)
		durationMin = o.fetchTasks(ctx, contestID)
		o.syncRepo(ctx)

		o.enter(PhaseWaitingForContestEnd)
		if err := o.waitForContestEnd(ctx, durationMin); err != nil {
			return err
		}

		o.enter(PhaseFetchingEditorials)
		if err := o.pipe.ProcessEditorials(ctx, contestID); err != nil {
			o.ledger.RecordStage(report.StageSite, err)
		}
		if err := o.pipe.ProcessUserEditorials(ctx, contestID); err != nil {
			o.ledger.RecordStage(report.StageSite, err)
		}
		o.syncRepo(ctx)
	} else {
		o.log.Info("no running contest today, skipping contest phases")
	}

	o.enter(PhaseBackfillingPast)
	o.backfillPast(ctx)
	o.syncRepo(ctx)

	if ShouldRefreshUserEditorials(o.clock.Now()) {
		o.enter(PhaseRefreshingUserEditorial)
		o.refreshUserEditorials(ctx)
		o.syncRepo(ctx)
	}

	o.enter(PhaseIdle)
	o.ledger.Summarize()
	return ctx.Err()
}

// register logs in and joins every running contest, returning the id
// of the first one. Missing credentials skip the phase.
func (o *Orchestrator) register(ctx context.Context) string {
	if err := o.cfg.RequireCredentials(); err != nil {
		o.log.Warn("no site credentials, skipping registration")
		return o.findRunningContest(ctx)
	}
	if err := o.site.Login(ctx, o.cfg.Username, o.cfg.Password); err != nil {
		o.ledger.RecordStage(report.StageSite, err)
		return o.findRunningContest(ctx)
	}
	running, err := o.site.RunningContests(ctx)
	if err != nil {
		o.ledger.RecordStage(report.StageSite, err)
		return ""
	}
	for _, id := range running {
		joined, err := o.site.Join(ctx, id)
		if err != nil {
			o.ledger.RecordStage(report.StageSite, err)
			continue
		}
		o.log.Info("contest registration",
			logger.String("contest", id), logger.Bool("joined", joined))
	}
	if len(running) == 0 {
		return ""
	}
	return running[0]
}

func (o *Orchestrator) findRunningContest(ctx context.Context) string {
	running, err := o.site.RunningContests(ctx)
	if err != nil {
		o.ledger.RecordStage(report.StageSite, err)
		return ""
	}
	if len(running) == 0 {
		return ""
	}
	return running[0]
}

// fetchTasks processes the contest's tasks and returns its duration in
// minutes for the wait phase.
func (o *Orchestrator) fetchTasks(ctx context.Context, contestID string) int {
	info, err := o.site.ContestInfo(ctx, contestID)
	durationMin := 60
	if err != nil {
		o.ledger.RecordStage(report.StageSite, err)
	} else {
		durationMin = info.DurationMin
	}
	if err := o.pipe.ProcessTasks(ctx, contestID); err != nil {
		o.ledger.RecordStage(report.StageSite, err)
	}
	return durationMin
}

// waitForContestEnd sleeps until contest start plus its duration. The
// wait is capped so a parse error on the duration cannot stall the run
// indefinitely.
func (o *Orchestrator) waitForContestEnd(ctx context.Context, durationMin int) error {
	end := atHourJST(o.clock.Now(), contestHour).Add(time.Duration(durationMin) * time.Minute)
	wait := end.Sub(o.clock.Now())
	if wait > o.cfg.MaxWait {
		wait = o.cfg.MaxWait
	}
	if wait <= 0 {
		return ctx.Err()
	}
	o.log.Info("waiting for contest end", logger.Duration("wait", wait))
	return o.clock.Sleep(ctx, wait)
}

// backfillPast reprocesses the most recent ended contests to pick up
// items that appeared or failed after contest day.
func (o *Orchestrator) backfillPast(ctx context.Context) {
	ids, err := o.site.AllContests(ctx)
	if err != nil {
		o.ledger.RecordStage(report.StageSite, err)
		return
	}
	if len(ids) > backfillCount {
		ids = ids[:backfillCount]
	}
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		o.pipe.ProcessContest(ctx, id)
	}
}

// refreshUserEditorials sweeps every known contest for user editorials
// published since the last sweep.
func (o *Orchestrator) refreshUserEditorials(ctx context.Context) {
	ids, err := o.site.AllContests(ctx)
	if err != nil {
		o.ledger.RecordStage(report.StageSite, err)
		return
	}
	o.log.Info("refreshing user editorials", logger.Int("contests", len(ids)))
	for _, id := range ids {
		if ctx.Err() != nil {
			return
		}
		if err := o.pipe.ProcessUserEditorials(ctx, id); err != nil {
			o.ledger.RecordStage(report.StageSite, err)
		}
	}
}

// sleepUntilHour waits until hour:00 JST today, or returns immediately
// when that instant has already passed.
func (o *Orchestrator) sleepUntilHour(ctx context.Context, hour int) error {
	target := atHourJST(o.clock.Now(), hour)
	wait := target.Sub(o.clock.Now())
	if wait <= 0 {
		return ctx.Err()
	}
	o.log.Info("sleeping until trigger",
		logger.Int("hour_jst", hour), logger.Duration("wait", wait))
	return o.clock.Sleep(ctx, wait)
}

func (o *Orchestrator) syncRepo(ctx context.Context) {
	if err := o.committer.Sync(ctx); err != nil {
		o.ledger.RecordStage(report.StagePublish, err)
	}
}
