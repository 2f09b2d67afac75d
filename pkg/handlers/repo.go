package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/saltboot/saltboot/pkg/config"
)

// DefaultRepoBase is the root of the Salt package repositories.
const DefaultRepoBase = "https://repo.saltproject.io/salt/py3"

const repoGPGName = "SALT-PROJECT-GPG-PUBKEY-2023.pub"

// repoBase returns the repository root, honoring --repo-url.
func (e *Env) repoBase() string {
	if e.Cfg.RepoURL != "" {
		return strings.TrimRight(e.Cfg.RepoURL, "/")
	}
	return DefaultRepoBase
}

// repoVersionPath is the channel directory under the per-distro tree:
// a pinned version installs from its minor directory, everything else
// tracks latest.
func (e *Env) repoVersionPath() string {
	if e.Mode.Rev != "" {
		return "minor/" + e.Mode.Rev
	}
	return "latest"
}

// registerAptRepo writes the APT source entry and fetches the signing
// keyring. The file is written once; --force overwrites, --no-repo
// skips registration entirely.
func (e *Env) registerAptRepo(ctx context.Context) error {
	if e.Cfg.NoRepo {
		log.Info().Msg("Repository registration disabled, using distribution packages")
		return nil
	}

	version := e.ID.Version.Major
	if e.ID.ID == "ubuntu" && e.ID.Version.Minor != "" {
		version = e.ID.Version.Major + "." + e.ID.Version.Minor
	}
	base := fmt.Sprintf("%s/%s/%s/amd64/%s", e.repoBase(), e.ID.ID, version, e.repoVersionPath())

	if err := e.Get.Download(ctx, base+"/"+repoGPGName, e.AptKeyring, 0o644); err != nil {
		return fmt.Errorf("failed to fetch repository key: %w", err)
	}

	line := fmt.Sprintf("deb [signed-by=%s arch=amd64] %s %s main\n", e.AptKeyring, base, e.ID.Codename)
	wrote, err := config.WriteOnce(e.AptRepoFile, []byte(line), 0o644, e.Cfg.Force)
	if err != nil {
		return err
	}
	if wrote {
		log.Info().Str("file", e.AptRepoFile).Msg("Registered salt package repository")
	}
	return nil
}

// registerYumRepo writes the yum/dnf repository definition. Same
// write-once and override semantics as the APT variant.
func (e *Env) registerYumRepo(ctx context.Context) error {
	if e.Cfg.NoRepo {
		log.Info().Msg("Repository registration disabled, using distribution packages")
		return nil
	}

	base := fmt.Sprintf("%s/redhat/%s/$basearch/%s", e.repoBase(), e.ID.Version.Major, e.repoVersionPath())
	content := fmt.Sprintf(`[salt-repo]
name=Salt Package Repository
baseurl=%s
enabled=1
gpgcheck=1
gpgkey=%s/%s
`, base, base, repoGPGName)

	wrote, err := config.WriteOnce(e.YumRepoFile, []byte(content), 0o644, e.Cfg.Force)
	if err != nil {
		return err
	}
	if wrote {
		log.Info().Str("file", e.YumRepoFile).Msg("Registered salt package repository")
	}
	return nil
}
