package handlers

import (
	"context"
	"fmt"

	"github.com/saltboot/saltboot/pkg/dispatch"
)

// Recipes for the Enterprise Linux family plus Fedora and Amazon
// Linux. The tool is dnf on modern releases and yum on the old EL
// majors; the split is decided from the identity at run time, with
// one explicitly versioned recipe set for EL 7 where the git install
// needs a different toolchain.

var elFamily = []string{"centos", "redhat", "oracle", "scientific", "almalinux", "rocky", "amazon", "fedora"}

func yumHandlers(e *Env) map[string]dispatch.Handler {
	h := map[string]dispatch.Handler{}
	for _, d := range elFamily {
		h["install_"+d+"_stable_deps"] = e.yumDeps
		h["install_"+d+"_onedir_deps"] = e.yumDeps
		h["install_"+d+"_git_deps"] = e.yumGitDeps
		h["install_"+d+"_stable"] = e.yumInstall
		h["install_"+d+"_onedir"] = e.yumInstall
		h["install_"+d+"_testing"] = e.yumInstall
		h["install_"+d+"_git"] = e.gitInstall
		h["install_"+d+"_stable_post"] = e.systemdEnable
		h["install_"+d+"_git_post"] = e.systemdEnable
		h["install_"+d+"_restart_daemons"] = e.systemdRestart
		h["install_"+d+"_check_services"] = e.systemdCheck
	}

	// EL 7 keeps yum and needs EPEL for the source toolchain. These
	// versioned names outrank the family-wide ones in the candidate
	// order, so EL 7 hosts pick them up automatically.
	h["install_centos_7_git_deps"] = e.el7GitDeps
	h["install_redhat_7_git_deps"] = e.el7GitDeps
	h["install_oracle_7_git_deps"] = e.el7GitDeps

	return h
}

// pkgTool picks dnf or yum from the identity. Fedora has been dnf for
// every supported release; EL grew dnf in major 8.
func (e *Env) pkgTool() string {
	if e.ID.ID == "fedora" {
		return "dnf"
	}
	if major, ok := e.ID.Version.MajorNum(); ok && major >= 8 && e.ID.ID != "amazon" {
		return "dnf"
	}
	if e.ID.ID == "amazon" {
		if major, ok := e.ID.Version.MajorNum(); ok && major >= 2023 {
			return "dnf"
		}
	}
	return "yum"
}

func (e *Env) yumDeps(ctx context.Context) error {
	args := []string{"install", "-y", "curl", "ca-certificates"}
	args = append(args, e.Cfg.ExtraPackages...)
	return e.Run.Run(ctx, e.pkgTool(), args...)
}

func (e *Env) yumGitDeps(ctx context.Context) error {
	if err := e.yumDeps(ctx); err != nil {
		return err
	}
	return e.Run.Run(ctx, e.pkgTool(), "install", "-y",
		"git", "python3", "python3-pip", "python3-setuptools")
}

// el7GitDeps is the EL 7 variant: EPEL first, then the python3
// toolchain that only exists there.
func (e *Env) el7GitDeps(ctx context.Context) error {
	if err := e.Run.Run(ctx, "yum", "install", "-y", "epel-release"); err != nil {
		return fmt.Errorf("failed to install epel-release: %w", err)
	}
	return e.Run.Run(ctx, "yum", "install", "-y",
		"curl", "ca-certificates", "git", "python36", "python36-pip")
}

func (e *Env) yumInstall(ctx context.Context) error {
	if err := e.registerYumRepo(ctx); err != nil {
		return err
	}
	args := []string{"install", "-y"}
	for _, pkg := range e.packages() {
		if e.Mode.Rev != "" {
			pkg = pkg + "-" + e.Mode.Rev
		}
		args = append(args, pkg)
	}
	return e.Run.Run(ctx, e.pkgTool(), args...)
}
