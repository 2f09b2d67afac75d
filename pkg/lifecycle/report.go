package lifecycle

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/saltboot/saltboot/pkg/dispatch"
	"github.com/saltboot/saltboot/pkg/distro"
)

// Status is the outcome of one phase within a run.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// PhaseOutcome records what happened to one phase.
type PhaseOutcome struct {
	Phase    dispatch.Phase
	Handler  string
	Status   Status
	Duration time.Duration
	Err      error
}

// Report summarizes one bootstrap run.
type Report struct {
	RunID     string
	Identity  distro.Identity
	Mode      dispatch.Mode
	StartedAt time.Time
	Duration  time.Duration
	Phases    []PhaseOutcome
}

// Log writes the run summary through the global logger.
func (r *Report) Log() {
	var succeeded, skipped, failed int
	for _, p := range r.Phases {
		switch p.Status {
		case StatusSucceeded:
			succeeded++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	event := log.Info()
	if failed > 0 {
		event = log.Error()
	}
	event.
		Str("run_id", r.RunID).
		Str("distro", r.Identity.String()).
		Str("mode", r.Mode.String()).
		Int("succeeded", succeeded).
		Int("skipped", skipped).
		Int("failed", failed).
		Dur("duration", r.Duration).
		Msg("Bootstrap run finished")
}
