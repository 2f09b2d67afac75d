package handlers

import (
	"context"
	"fmt"

	"github.com/saltboot/saltboot/pkg/dispatch"
)

// Recipes for the Debian family (apt). Ubuntu and Debian share the
// same mechanics; the repository path and the daily PPA differ.

func aptHandlers(e *Env) map[string]dispatch.Handler {
	h := map[string]dispatch.Handler{}
	for _, d := range []string{"ubuntu", "debian"} {
		h["install_"+d+"_stable_deps"] = e.aptDeps
		h["install_"+d+"_onedir_deps"] = e.aptDeps
		h["install_"+d+"_git_deps"] = e.aptGitDeps
		h["install_"+d+"_stable"] = e.aptInstall
		h["install_"+d+"_onedir"] = e.aptInstall
		h["install_"+d+"_git"] = e.gitInstall
		h["install_"+d+"_stable_post"] = e.systemdEnable
		h["install_"+d+"_git_post"] = e.systemdEnable
		h["install_"+d+"_restart_daemons"] = e.systemdRestart
		h["install_"+d+"_check_services"] = e.systemdCheck
	}

	// Testing packages are staged for Debian only.
	h["install_debian_testing_deps"] = e.aptDeps
	h["install_debian_testing"] = e.aptInstall

	// The daily builds come from an Ubuntu PPA.
	h["install_ubuntu_daily_deps"] = e.aptDeps
	h["install_ubuntu_daily"] = e.aptDailyInstall

	return h
}

// aptDeps installs the transport tooling the repository setup needs,
// plus any extra packages requested on the command line.
func (e *Env) aptDeps(ctx context.Context) error {
	run := e.Run.WithEnv("DEBIAN_FRONTEND=noninteractive")
	if err := run.Run(ctx, "apt-get", "update"); err != nil {
		return fmt.Errorf("failed to refresh package lists: %w", err)
	}
	args := []string{"install", "-y", "curl", "ca-certificates", "gnupg"}
	args = append(args, e.Cfg.ExtraPackages...)
	return run.Run(ctx, "apt-get", args...)
}

// aptGitDeps adds the source-install toolchain on top of the base
// dependencies.
func (e *Env) aptGitDeps(ctx context.Context) error {
	if err := e.aptDeps(ctx); err != nil {
		return err
	}
	run := e.Run.WithEnv("DEBIAN_FRONTEND=noninteractive")
	return run.Run(ctx, "apt-get", "install", "-y",
		"git", "python3", "python3-pip", "python3-setuptools", "python3-wheel")
}

// aptInstall registers the salt repository and installs the selected
// role packages, pinned when the mode carries a version.
func (e *Env) aptInstall(ctx context.Context) error {
	if err := e.registerAptRepo(ctx); err != nil {
		return err
	}
	run := e.Run.WithEnv("DEBIAN_FRONTEND=noninteractive")
	if err := run.Run(ctx, "apt-get", "update"); err != nil {
		return fmt.Errorf("failed to refresh package lists: %w", err)
	}

	args := []string{"install", "-y"}
	for _, pkg := range e.packages() {
		if e.Mode.Rev != "" {
			pkg = pkg + "=" + e.Mode.Rev + "*"
		}
		args = append(args, pkg)
	}
	return run.Run(ctx, "apt-get", args...)
}

// aptDailyInstall pulls the daily builds from the Salt PPA instead of
// the package repository.
func (e *Env) aptDailyInstall(ctx context.Context) error {
	run := e.Run.WithEnv("DEBIAN_FRONTEND=noninteractive")
	if err := run.Run(ctx, "apt-get", "install", "-y", "software-properties-common"); err != nil {
		return fmt.Errorf("failed to install add-apt-repository: %w", err)
	}
	if err := run.Run(ctx, "add-apt-repository", "-y", "ppa:saltstack/salt-daily"); err != nil {
		return fmt.Errorf("failed to add daily PPA: %w", err)
	}
	if err := run.Run(ctx, "apt-get", "update"); err != nil {
		return fmt.Errorf("failed to refresh package lists: %w", err)
	}
	args := append([]string{"install", "-y"}, e.packages()...)
	return run.Run(ctx, "apt-get", args...)
}
