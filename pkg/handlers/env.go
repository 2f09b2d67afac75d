// Package handlers holds the per-distribution bootstrap recipes and
// the phase-wide defaults, and assembles them into the dispatch
// registry. Every recipe is an opaque dispatch.Handler; the engine
// knows nothing about package managers.
package handlers

import (
	"fmt"
	"path/filepath"

	"github.com/saltboot/saltboot/pkg/config"
	"github.com/saltboot/saltboot/pkg/dispatch"
	"github.com/saltboot/saltboot/pkg/distro"
	"github.com/saltboot/saltboot/pkg/fetch"
	"github.com/saltboot/saltboot/pkg/system"
)

// Env carries everything a recipe closure needs: the run
// configuration, the resolved identity, the install mode, a command
// runner, and the download client. One Env is built per run and
// shared by every registered handler.
type Env struct {
	Cfg  *config.Config
	ID   distro.Identity
	Mode dispatch.Mode
	Run  *system.Runner
	Get  *fetch.Client

	// EtcDir is the salt configuration directory.
	EtcDir string

	// SourceDir is where the git checkout lives for source installs.
	SourceDir string

	// Repository registration targets. Overridable for tests.
	AptRepoFile string
	AptKeyring  string
	YumRepoFile string
}

// NewEnv builds the handler environment for one run.
func NewEnv(cfg *config.Config, id distro.Identity) (*Env, error) {
	client, err := fetch.NewClient(fetch.Options{
		Proxy:    cfg.Proxy,
		Insecure: cfg.Insecure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create download client: %w", err)
	}

	return &Env{
		Cfg:         cfg,
		ID:          id,
		Mode:        cfg.Mode,
		Run:         system.NewRunner(),
		Get:         client,
		EtcDir:      "/etc/salt",
		SourceDir:   filepath.Join(cfg.DataDir, "src", "salt"),
		AptRepoFile: "/etc/apt/sources.list.d/salt.list",
		AptKeyring:  "/usr/share/keyrings/salt-archive-keyring.pgp",
		YumRepoFile: "/etc/yum.repos.d/salt.repo",
	}, nil
}

// packages returns the package names to install for the selected
// roles. Most package managers ship one package per daemon; families
// that bundle everything into a single package override this.
func (e *Env) packages() []string {
	return e.Cfg.Roles()
}
