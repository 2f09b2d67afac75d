package handlers

import (
	"context"
	"fmt"

	"github.com/saltboot/saltboot/pkg/dispatch"
)

// Recipes for FreeBSD (pkg, rc.d). Salt ships as a single port.

const freebsdSaltPackage = "py311-salt"

func bsdHandlers(e *Env) map[string]dispatch.Handler {
	return map[string]dispatch.Handler{
		"install_freebsd_stable_deps":     e.bsdDeps,
		"install_freebsd_git_deps":        e.bsdGitDeps,
		"install_freebsd_stable":          e.bsdInstall,
		"install_freebsd_git":             e.gitInstall,
		"install_freebsd_stable_post":     e.bsdEnable,
		"install_freebsd_git_post":        e.bsdEnable,
		"install_freebsd_restart_daemons": e.bsdRestart,
	}
}

func (e *Env) bsdDeps(ctx context.Context) error {
	if err := e.Run.Run(ctx, "pkg", "update"); err != nil {
		return fmt.Errorf("failed to refresh package catalog: %w", err)
	}
	if len(e.Cfg.ExtraPackages) == 0 {
		return nil
	}
	args := append([]string{"install", "-y"}, e.Cfg.ExtraPackages...)
	return e.Run.Run(ctx, "pkg", args...)
}

func (e *Env) bsdGitDeps(ctx context.Context) error {
	if err := e.bsdDeps(ctx); err != nil {
		return err
	}
	return e.Run.Run(ctx, "pkg", "install", "-y", "git", "python311", "py311-pip")
}

func (e *Env) bsdInstall(ctx context.Context) error {
	return e.Run.Run(ctx, "pkg", "install", "-y", freebsdSaltPackage)
}
