package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/saltboot/saltboot/pkg/config"
)

// Phase-wide default handlers. These match any distribution and sit at
// the bottom of the candidate list for their phase.

// configSalt seeds /etc/salt: directories and key dirs are created
// with tight permissions, seed files are copied from --config-dir, and
// inline minion overrides are merged into the minion file.
func (e *Env) configSalt(ctx context.Context) error {
	if err := config.EnsureSaltDirs(e.EtcDir, e.Cfg.KeysDir); err != nil {
		return err
	}

	if e.Cfg.ConfigDir != "" {
		copied, err := config.CopySeeds(e.Cfg.ConfigDir, e.EtcDir, e.Cfg.Force)
		if err != nil {
			return err
		}
		log.Info().Int("files", len(copied)).Msg("Seeded salt configuration")
	}

	minionPath := filepath.Join(e.EtcDir, "minion")
	if err := config.ApplyMinionSettings(minionPath, e.Cfg.MinionID, e.Cfg.MasterAddress); err != nil {
		return err
	}
	return nil
}

// preseedMaster copies pre-generated minion keys from the keys
// subdirectory of --config-dir into the master's accepted-keys
// directory. Nothing to copy is not an error.
func (e *Env) preseedMaster(ctx context.Context) error {
	if e.Cfg.ConfigDir == "" {
		log.Debug().Msg("No configuration directory, nothing to preseed")
		return nil
	}
	srcDir := filepath.Join(e.Cfg.ConfigDir, "keys")
	entries, err := os.ReadDir(srcDir)
	if os.IsNotExist(err) {
		log.Debug().Str("dir", srcDir).Msg("No preseeded keys present")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read keys directory: %w", err)
	}

	destDir := filepath.Join(e.Cfg.KeysDir, "master", "minions")
	if err := os.MkdirAll(destDir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	var seeded int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(srcDir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read key %s: %w", entry.Name(), err)
		}
		wrote, err := config.WriteOnce(filepath.Join(destDir, entry.Name()), data, 0o600, e.Cfg.Force)
		if err != nil {
			return err
		}
		if wrote {
			seeded++
		}
	}
	log.Info().Int("keys", seeded).Str("dir", destDir).Msg("Preseeded minion keys")
	return nil
}

// daemonsRunning verifies that every selected daemon has a live
// process. The orchestrator handles diagnostics when this fails.
func (e *Env) daemonsRunning(ctx context.Context) error {
	var missing []string
	for _, daemon := range e.Cfg.Roles() {
		if err := e.Run.Quiet(ctx, "pgrep", "-x", daemon); err != nil {
			missing = append(missing, daemon)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("daemons not running: %s", strings.Join(missing, ", "))
	}
	return nil
}
