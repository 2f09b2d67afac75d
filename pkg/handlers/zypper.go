package handlers

import (
	"context"
	"fmt"

	"github.com/saltboot/saltboot/pkg/dispatch"
)

// Recipes for the SUSE family (zypper). openSUSE and SLES carry salt
// in the distribution repositories, so no repository registration is
// needed unless a custom URL forces one.

func zypperHandlers(e *Env) map[string]dispatch.Handler {
	h := map[string]dispatch.Handler{}
	for _, d := range []string{"opensuse", "sles"} {
		h["install_"+d+"_stable_deps"] = e.zypperDeps
		h["install_"+d+"_onedir_deps"] = e.zypperDeps
		h["install_"+d+"_git_deps"] = e.zypperGitDeps
		h["install_"+d+"_stable"] = e.zypperInstall
		h["install_"+d+"_onedir"] = e.zypperInstall
		h["install_"+d+"_git"] = e.gitInstall
		h["install_"+d+"_stable_post"] = e.systemdEnable
		h["install_"+d+"_git_post"] = e.systemdEnable
		h["install_"+d+"_restart_daemons"] = e.systemdRestart
		h["install_"+d+"_check_services"] = e.systemdCheck
	}
	return h
}

func (e *Env) zypperDeps(ctx context.Context) error {
	if err := e.Run.Run(ctx, "zypper", "--non-interactive", "refresh"); err != nil {
		return fmt.Errorf("failed to refresh repositories: %w", err)
	}
	args := []string{"--non-interactive", "install", "--auto-agree-with-licenses", "curl", "ca-certificates"}
	args = append(args, e.Cfg.ExtraPackages...)
	return e.Run.Run(ctx, "zypper", args...)
}

func (e *Env) zypperGitDeps(ctx context.Context) error {
	if err := e.zypperDeps(ctx); err != nil {
		return err
	}
	return e.Run.Run(ctx, "zypper", "--non-interactive", "install", "--auto-agree-with-licenses",
		"git", "python3", "python3-pip", "python3-setuptools")
}

func (e *Env) zypperInstall(ctx context.Context) error {
	args := []string{"--non-interactive", "install", "--auto-agree-with-licenses"}
	for _, pkg := range e.packages() {
		if e.Mode.Rev != "" {
			pkg = pkg + "=" + e.Mode.Rev
		}
		args = append(args, pkg)
	}
	return e.Run.Run(ctx, "zypper", args...)
}
