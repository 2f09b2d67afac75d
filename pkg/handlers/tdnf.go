package handlers

import (
	"context"

	"github.com/saltboot/saltboot/pkg/dispatch"
)

// Recipes for VMware Photon OS (tdnf, systemd).

func tdnfHandlers(e *Env) map[string]dispatch.Handler {
	return map[string]dispatch.Handler{
		"install_photon_stable_deps":     e.tdnfDeps,
		"install_photon_git_deps":        e.tdnfGitDeps,
		"install_photon_stable":          e.tdnfInstall,
		"install_photon_git":             e.gitInstall,
		"install_photon_stable_post":     e.systemdEnable,
		"install_photon_git_post":        e.systemdEnable,
		"install_photon_restart_daemons": e.systemdRestart,
		"install_photon_check_services":  e.systemdCheck,
	}
}

func (e *Env) tdnfDeps(ctx context.Context) error {
	args := []string{"install", "-y", "curl", "ca-certificates"}
	args = append(args, e.Cfg.ExtraPackages...)
	return e.Run.Run(ctx, "tdnf", args...)
}

func (e *Env) tdnfGitDeps(ctx context.Context) error {
	if err := e.tdnfDeps(ctx); err != nil {
		return err
	}
	return e.Run.Run(ctx, "tdnf", "install", "-y",
		"git", "python3", "python3-pip", "python3-setuptools")
}

func (e *Env) tdnfInstall(ctx context.Context) error {
	args := []string{"install", "-y"}
	for _, pkg := range e.packages() {
		if e.Mode.Rev != "" {
			pkg = pkg + "-" + e.Mode.Rev
		}
		args = append(args, pkg)
	}
	return e.Run.Run(ctx, "tdnf", args...)
}
