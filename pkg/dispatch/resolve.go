package dispatch

import (
	"github.com/rs/zerolog/log"

	"github.com/saltboot/saltboot/pkg/distro"
)

// ResolutionState is the tri-state outcome of probing a phase.
type ResolutionState int

const (
	// Unresolved means no candidate name is bound to a handler.
	Unresolved ResolutionState = iota

	// Resolved means a handler was found for one of the candidates.
	Resolved

	// NotApplicable marks phases excluded from the run plan before
	// resolution (configuration-only mode, daemons not started).
	NotApplicable
)

// String returns the state name for logs.
func (s ResolutionState) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case NotApplicable:
		return "not-applicable"
	default:
		return "unresolved"
	}
}

// Resolution records the dispatch decision for one phase. It is
// computed once, before any handler executes, and never recomputed
// mid-run.
type Resolution struct {
	Phase Phase
	State ResolutionState

	// Name is the candidate that matched; empty unless Resolved.
	Name string

	// Handler is the matched implementation; nil unless Resolved.
	Handler Handler

	// Candidates is the full probed list, kept for diagnostics.
	Candidates []string
}

// Found reports whether the phase has a handler to run.
func (r Resolution) Found() bool {
	return r.State == Resolved
}

// Resolve probes the registry with the candidate list for the phase,
// in order, stopping at the first match. Resolution is deterministic:
// the same phase, identity, mode, and registry always produce the same
// outcome. The matched candidate is logged for diagnosability.
func Resolve(reg *Registry, phase Phase, id distro.Identity, mode Mode) Resolution {
	candidates := Candidates(phase, id, mode)
	for i, name := range candidates {
		h, ok := reg.Lookup(name)
		if !ok {
			continue
		}
		log.Debug().
			Str("phase", string(phase)).
			Str("handler", name).
			Int("tier", i).
			Msg("Resolved phase handler")
		return Resolution{
			Phase:      phase,
			State:      Resolved,
			Name:       name,
			Handler:    h,
			Candidates: candidates,
		}
	}

	log.Debug().
		Str("phase", string(phase)).
		Strs("candidates", candidates).
		Msg("No handler for phase")
	return Resolution{
		Phase:      phase,
		State:      Unresolved,
		Candidates: candidates,
	}
}
