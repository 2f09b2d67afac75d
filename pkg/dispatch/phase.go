package dispatch

// Phase is one discrete step of the installation lifecycle.
type Phase string

const (
	PhaseDependencies   Phase = "dependencies"
	PhaseConfigure      Phase = "configure"
	PhasePreseedKeys    Phase = "preseed-keys"
	PhaseInstall        Phase = "install"
	PhasePostInstall    Phase = "post-install"
	PhaseCheckServices  Phase = "check-services"
	PhaseRestartDaemons Phase = "restart-daemons"
	PhaseDaemonsRunning Phase = "daemons-running"
)

// Phases lists every lifecycle phase in execution order. The order is
// fixed and never rearranged based on which handlers exist.
func Phases() []Phase {
	return []Phase{
		PhaseDependencies,
		PhaseConfigure,
		PhasePreseedKeys,
		PhaseInstall,
		PhasePostInstall,
		PhaseCheckServices,
		PhaseRestartDaemons,
		PhaseDaemonsRunning,
	}
}

// template describes how candidate names are assembled for one phase.
type template struct {
	prefix string
	suffix string

	// fallback is the distro-agnostic default handler name, probed
	// after every identity-derived candidate. Only configure,
	// preseed-keys, and daemons-running have one.
	fallback string

	// mandatory phases abort the run when no handler resolves.
	mandatory bool
}

var templates = map[Phase]template{
	PhaseDependencies:   {prefix: "install_", suffix: "_deps", mandatory: true},
	PhaseConfigure:      {prefix: "config_", suffix: "_salt", fallback: "config_salt"},
	PhasePreseedKeys:    {prefix: "preseed_", suffix: "_master", fallback: "preseed_master"},
	PhaseInstall:        {prefix: "install_", mandatory: true},
	PhasePostInstall:    {prefix: "install_", suffix: "_post"},
	PhaseCheckServices:  {prefix: "install_", suffix: "_check_services"},
	PhaseRestartDaemons: {prefix: "install_", suffix: "_restart_daemons"},
	PhaseDaemonsRunning: {prefix: "daemons_running_", fallback: "daemons_running"},
}

// Mandatory reports whether this phase must resolve to a handler for a
// run to proceed.
func (p Phase) Mandatory() bool {
	return templates[p].mandatory
}

// Default returns the phase-wide default handler name, or "" when the
// phase has none.
func (p Phase) Default() string {
	return templates[p].fallback
}
