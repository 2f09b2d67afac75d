package handlers

import (
	"context"
	"fmt"
	"os"
)

// gitInstall installs salt from the source checkout the orchestrator
// prepared before this phase. Shared by every family; the per-family
// part is the git_deps recipe that provides the toolchain.
func (e *Env) gitInstall(ctx context.Context) error {
	if _, err := os.Stat(e.SourceDir); err != nil {
		return fmt.Errorf("source checkout missing at %s: %w", e.SourceDir, err)
	}
	run := e.Run.WithDir(e.SourceDir)
	if err := run.Run(ctx, "python3", "-m", "pip", "install", "--upgrade", "."); err != nil {
		return fmt.Errorf("failed to install salt from source: %w", err)
	}
	return nil
}
