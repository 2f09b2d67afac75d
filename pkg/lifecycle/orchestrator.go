package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/saltboot/saltboot/pkg/config"
	"github.com/saltboot/saltboot/pkg/dispatch"
	"github.com/saltboot/saltboot/pkg/distro"
	"github.com/saltboot/saltboot/pkg/journal"
	"github.com/saltboot/saltboot/pkg/system"
	"github.com/saltboot/saltboot/pkg/telemetry"
)

// SourceFunc obtains the source checkout for git installs. Wired in by
// the caller so the orchestrator does not depend on the git machinery.
type SourceFunc func(ctx context.Context) error

// Orchestrator drives one bootstrap run: it plans the phase list from
// the configuration, resolves every planned phase against the registry
// before anything executes, and then runs the resolved handlers in the
// fixed lifecycle order with fail-fast semantics.
type Orchestrator struct {
	cfg *config.Config
	id  distro.Identity
	reg *dispatch.Registry

	source  SourceFunc
	journal *journal.Journal
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer

	// diagnostics runs when daemons-running verification fails.
	diagnostics func(ctx context.Context)

	// sleep is the settle wait before verification. Replaceable in
	// tests.
	sleep func(d time.Duration)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSource wires the source retrieval helper for git installs.
func WithSource(fn SourceFunc) Option {
	return func(o *Orchestrator) { o.source = fn }
}

// WithJournal records run and phase outcomes to the journal.
func WithJournal(j *journal.Journal) Option {
	return func(o *Orchestrator) { o.journal = j }
}

// WithMetrics records phase metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithTracer wraps the run and each phase in trace spans.
func WithTracer(t *telemetry.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// New creates an orchestrator for one run.
func New(cfg *config.Config, id distro.Identity, reg *dispatch.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:   cfg,
		id:    id,
		reg:   reg,
		sleep: time.Sleep,
	}
	o.diagnostics = o.dumpDiagnostics
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// plan returns the phases included in this run, in execution order.
// Flags remove phases from the plan up front, which also removes them
// from the mandatory check.
func (o *Orchestrator) plan() []dispatch.Phase {
	var phases []dispatch.Phase
	for _, phase := range dispatch.Phases() {
		switch phase {
		case dispatch.PhaseDependencies:
			if o.cfg.ConfigOnly || o.cfg.NoDeps {
				continue
			}
		case dispatch.PhaseInstall:
			if o.cfg.ConfigOnly {
				continue
			}
		case dispatch.PhaseDaemonsRunning:
			if o.cfg.NoStart {
				continue
			}
		}
		phases = append(phases, phase)
	}
	return phases
}

// Resolutions computes the dispatch decision for every planned phase.
// Exposed for the resolve diagnostic command; Execute calls it once
// and never recomputes mid-run.
func (o *Orchestrator) Resolutions() []dispatch.Resolution {
	planned := o.plan()
	resolutions := make([]dispatch.Resolution, 0, len(planned))
	for _, phase := range planned {
		resolutions = append(resolutions, dispatch.Resolve(o.reg, phase, o.id, o.cfg.Mode))
	}
	return resolutions
}

// Execute runs the full lifecycle. The returned report is valid even
// when the error is non-nil.
func (o *Orchestrator) Execute(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:     uuid.New().String(),
		Identity:  o.id,
		Mode:      o.cfg.Mode,
		StartedAt: time.Now(),
	}
	o.beginJournal(ctx, report)
	o.metrics.SetRunInfo(o.id.ID, o.id.Version.String(), string(o.cfg.Mode.Channel))

	if o.tracer != nil {
		runCtx, runSpan := o.tracer.StartRunSpan(ctx, report.RunID, o.id.String(), o.cfg.Mode.String())
		defer runSpan.End()
		ctx = runCtx
	}

	err := o.execute(ctx, report)
	report.Duration = time.Since(report.StartedAt)
	o.metrics.SetRunDuration(report.Duration)
	o.finishJournal(ctx, report, err)
	report.Log()
	return report, err
}

func (o *Orchestrator) execute(ctx context.Context, report *Report) error {
	// Step 1: resolve every planned phase before anything runs.
	resolutions := o.Resolutions()

	// Step 2: mandatory coverage check, before any handler side effect.
	for _, res := range resolutions {
		if res.Phase.Mandatory() && !res.Found() {
			log.Error().
				Str("phase", string(res.Phase)).
				Strs("candidates", res.Candidates).
				Msg("No handler for mandatory phase")
			return NewMissingHandlerError(
				fmt.Sprintf("no handler for %s on %s", res.Phase, o.id.String()), nil).
				WithPhase(string(res.Phase))
		}
		if !res.Found() {
			// An unresolved optional phase on a supported platform
			// usually means a catalog gap or a typo'd override, so it
			// is surfaced as a warning rather than silence.
			log.Warn().
				Str("phase", string(res.Phase)).
				Strs("candidates", res.Candidates).
				Msg("No handler for optional phase, skipping it")
		}
	}

	// Step 3: run the phases in order.
	for i, res := range resolutions {
		// Source retrieval slots in before configure for git installs.
		if res.Phase == dispatch.PhaseConfigure && o.cfg.Mode.Channel == dispatch.ChannelGit && !o.cfg.ConfigOnly {
			if err := o.retrieveSource(ctx); err != nil {
				return err
			}
		}

		if !res.Found() {
			o.recordPhase(ctx, report, PhaseOutcome{Phase: res.Phase, Status: StatusSkipped})
			continue
		}

		if res.Phase == dispatch.PhaseDaemonsRunning && o.cfg.SleepSeconds > 0 {
			log.Info().Int("seconds", o.cfg.SleepSeconds).Msg("Waiting for daemons to settle")
			o.sleep(time.Duration(o.cfg.SleepSeconds) * time.Second)
		}

		log.Info().
			Int("step", i+1).
			Int("of", len(resolutions)).
			Str("phase", string(res.Phase)).
			Str("handler", res.Name).
			Msg("Running phase")

		outcome := o.runPhase(ctx, res)
		o.recordPhase(ctx, report, outcome)
		if outcome.Err == nil {
			continue
		}

		if res.Phase == dispatch.PhaseDaemonsRunning {
			o.diagnostics(ctx)
			return NewVerificationError("daemon verification failed", outcome.Err).
				WithPhase(string(res.Phase)).
				WithHandler(res.Name)
		}
		return NewPhaseError("phase handler failed", outcome.Err).
			WithPhase(string(res.Phase)).
			WithHandler(res.Name)
	}
	return nil
}

// runPhase executes one resolved handler and measures it.
func (o *Orchestrator) runPhase(ctx context.Context, res dispatch.Resolution) PhaseOutcome {
	phaseCtx := ctx
	var end func(error)
	if o.tracer != nil {
		spanCtx, phaseSpan := o.tracer.StartPhaseSpan(ctx, string(res.Phase), res.Name)
		phaseCtx = spanCtx
		end = func(err error) {
			if err != nil {
				telemetry.RecordError(phaseSpan, err)
			} else {
				telemetry.RecordSuccess(phaseSpan)
			}
			phaseSpan.End()
		}
	}

	start := time.Now()
	err := res.Handler(phaseCtx)
	if end != nil {
		end(err)
	}
	outcome := PhaseOutcome{
		Phase:    res.Phase,
		Handler:  res.Name,
		Status:   StatusSucceeded,
		Duration: time.Since(start),
		Err:      err,
	}
	if err != nil {
		outcome.Status = StatusFailed
		log.Error().Err(err).
			Str("phase", string(res.Phase)).
			Str("handler", res.Name).
			Msg("Phase handler failed")
	}
	return outcome
}

// retrieveSource obtains the git checkout through the wired helper.
func (o *Orchestrator) retrieveSource(ctx context.Context) error {
	if o.source == nil {
		return NewPhaseError("git install requested but no source retrieval is wired", nil)
	}
	log.Info().Str("rev", o.cfg.Mode.Rev).Msg("Retrieving salt source")
	if err := o.source(ctx); err != nil {
		return NewPhaseError("source retrieval failed", err)
	}
	return nil
}

// recordPhase updates the report, journal, and metrics for one phase.
func (o *Orchestrator) recordPhase(ctx context.Context, report *Report, outcome PhaseOutcome) {
	report.Phases = append(report.Phases, outcome)
	o.metrics.RecordPhase(string(outcome.Phase), string(outcome.Status), outcome.Duration)

	if o.journal == nil {
		return
	}
	result := &journal.PhaseResult{
		RunID:      report.RunID,
		Phase:      string(outcome.Phase),
		Handler:    outcome.Handler,
		Status:     journal.PhaseStatus(outcome.Status),
		StartedAt:  time.Now().Add(-outcome.Duration),
		DurationMS: outcome.Duration.Milliseconds(),
	}
	if outcome.Err != nil {
		msg := outcome.Err.Error()
		result.Error = &msg
	}
	if err := o.journal.RecordPhase(ctx, result); err != nil {
		log.Warn().Err(err).Msg("Failed to journal phase outcome")
	}
}

func (o *Orchestrator) beginJournal(ctx context.Context, report *Report) {
	if o.journal == nil {
		return
	}
	err := o.journal.BeginRun(ctx, &journal.Run{
		ID:        report.RunID,
		Distro:    o.id.ID,
		Version:   o.id.Version.String(),
		Channel:   string(o.cfg.Mode.Channel),
		Rev:       o.cfg.Mode.Rev,
		Status:    journal.RunStatusRunning,
		StartedAt: report.StartedAt,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to journal run start")
	}
}

func (o *Orchestrator) finishJournal(ctx context.Context, report *Report, runErr error) {
	if o.journal == nil {
		return
	}
	status := journal.RunStatusSucceeded
	var msg *string
	if runErr != nil {
		status = journal.RunStatusFailed
		s := runErr.Error()
		msg = &s
	}
	if err := o.journal.FinishRun(ctx, report.RunID, status, ExitCode(runErr), msg); err != nil {
		log.Warn().Err(err).Msg("Failed to journal run completion")
	}
}

// dumpDiagnostics produces best-effort operator output when daemon
// verification fails: the process listing and the tails of the salt
// logs.
func (o *Orchestrator) dumpDiagnostics(ctx context.Context) {
	run := system.NewRunner()
	if out, err := run.Output(ctx, "ps", "aux"); err == nil {
		log.Error().Msg("Process listing at verification failure:\n" + out)
	}

	logs, err := filepath.Glob("/var/log/salt/*")
	if err != nil {
		return
	}
	for _, path := range logs {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		const tail = 4096
		if len(data) > tail {
			data = data[len(data)-tail:]
		}
		log.Error().Str("log", path).Msg("Salt log tail:\n" + string(data))
	}
}
