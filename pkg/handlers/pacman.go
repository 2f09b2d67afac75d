package handlers

import (
	"context"

	"github.com/saltboot/saltboot/pkg/dispatch"
)

// Recipes for Arch and Manjaro (pacman). A single salt package ships
// every daemon, and the rolling release model means there is no
// version pinning.

func pacmanHandlers(e *Env) map[string]dispatch.Handler {
	h := map[string]dispatch.Handler{}
	for _, d := range []string{"arch", "manjaro"} {
		h["install_"+d+"_stable_deps"] = e.pacmanDeps
		h["install_"+d+"_git_deps"] = e.pacmanGitDeps
		h["install_"+d+"_stable"] = e.pacmanInstall
		h["install_"+d+"_git"] = e.gitInstall
		h["install_"+d+"_stable_post"] = e.systemdEnable
		h["install_"+d+"_git_post"] = e.systemdEnable
		h["install_"+d+"_restart_daemons"] = e.systemdRestart
		h["install_"+d+"_check_services"] = e.systemdCheck
	}
	return h
}

func (e *Env) pacmanDeps(ctx context.Context) error {
	args := []string{"-Sy", "--noconfirm", "--needed", "curl", "ca-certificates"}
	args = append(args, e.Cfg.ExtraPackages...)
	return e.Run.Run(ctx, "pacman", args...)
}

func (e *Env) pacmanGitDeps(ctx context.Context) error {
	if err := e.pacmanDeps(ctx); err != nil {
		return err
	}
	return e.Run.Run(ctx, "pacman", "-S", "--noconfirm", "--needed",
		"git", "python", "python-pip", "python-setuptools")
}

func (e *Env) pacmanInstall(ctx context.Context) error {
	return e.Run.Run(ctx, "pacman", "-S", "--noconfirm", "--needed", "salt")
}
