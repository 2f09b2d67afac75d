package handlers

import (
	"context"
	"fmt"

	"github.com/saltboot/saltboot/pkg/dispatch"
)

// Recipes for Alpine (apk, OpenRC).

func apkHandlers(e *Env) map[string]dispatch.Handler {
	return map[string]dispatch.Handler{
		"install_alpine_stable_deps":     e.apkDeps,
		"install_alpine_git_deps":        e.apkGitDeps,
		"install_alpine_stable":          e.apkInstall,
		"install_alpine_git":             e.gitInstall,
		"install_alpine_stable_post":     e.openrcEnable,
		"install_alpine_git_post":        e.openrcEnable,
		"install_alpine_restart_daemons": e.openrcRestart,
	}
}

func (e *Env) apkDeps(ctx context.Context) error {
	if err := e.Run.Run(ctx, "apk", "update"); err != nil {
		return fmt.Errorf("failed to refresh package index: %w", err)
	}
	args := []string{"add", "curl", "ca-certificates"}
	args = append(args, e.Cfg.ExtraPackages...)
	return e.Run.Run(ctx, "apk", args...)
}

func (e *Env) apkGitDeps(ctx context.Context) error {
	if err := e.apkDeps(ctx); err != nil {
		return err
	}
	return e.Run.Run(ctx, "apk", "add",
		"git", "python3", "py3-pip", "py3-setuptools", "gcc", "musl-dev", "python3-dev")
}

func (e *Env) apkInstall(ctx context.Context) error {
	args := []string{"add"}
	for _, pkg := range e.packages() {
		if e.Mode.Rev != "" {
			pkg = pkg + "=" + e.Mode.Rev
		}
		args = append(args, pkg)
	}
	return e.Run.Run(ctx, "apk", args...)
}
