package handlers

import (
	"fmt"

	"github.com/saltboot/saltboot/pkg/dispatch"
)

// Build assembles the full handler registry for one run: every
// per-family recipe set plus the phase-wide defaults. Families are
// merged in a fixed order and a name collision between two families
// is a catalog bug surfaced as an error.
func Build(e *Env) (*dispatch.Registry, error) {
	reg := dispatch.NewRegistry()

	families := []map[string]dispatch.Handler{
		aptHandlers(e),
		yumHandlers(e),
		zypperHandlers(e),
		pacmanHandlers(e),
		apkHandlers(e),
		bsdHandlers(e),
		tdnfHandlers(e),
	}
	for _, family := range families {
		for name, h := range family {
			if err := reg.Register(name, h); err != nil {
				return nil, fmt.Errorf("failed to build handler catalog: %w", err)
			}
		}
	}

	// Phase-wide defaults, matched when no distro-specific candidate
	// resolves.
	defaults := map[string]dispatch.Handler{
		dispatch.PhaseConfigure.Default():      e.configSalt,
		dispatch.PhasePreseedKeys.Default():    e.preseedMaster,
		dispatch.PhaseDaemonsRunning.Default(): e.daemonsRunning,
	}
	for name, h := range defaults {
		if err := reg.Register(name, h); err != nil {
			return nil, fmt.Errorf("failed to build handler catalog: %w", err)
		}
	}

	return reg, nil
}
