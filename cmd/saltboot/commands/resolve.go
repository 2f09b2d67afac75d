package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/saltboot/saltboot/pkg/dispatch"
	"github.com/saltboot/saltboot/pkg/distro"
	"github.com/saltboot/saltboot/pkg/handlers"
	"github.com/saltboot/saltboot/pkg/lifecycle"
	"github.com/saltboot/saltboot/pkg/platform"
)

func newResolveCommand(f *rootFlags) *cobra.Command {
	var (
		channel string
		rev     string
	)

	cmd := &cobra.Command{
		Use:   "resolve [phase]",
		Short: "Show handler resolution for the detected platform",
		Long: `Print the candidate handler names for each lifecycle phase and what
the built-in catalog resolves them to on this host.

This is a diagnostic: nothing is installed or changed. With a phase
argument only that phase is shown.`,
		Example: `  # Resolution for every phase on the stable channel
  saltboot resolve

  # Resolution for the install phase on the git channel
  saltboot resolve install --mode git`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modeArgs := []string{channel}
			if rev != "" {
				modeArgs = append(modeArgs, rev)
			}
			mode, err := dispatch.ParseMode(modeArgs)
			if err != nil {
				return lifecycle.NewUsageError("invalid install mode", err)
			}

			phases := dispatch.Phases()
			if len(args) == 1 {
				phases = nil
				for _, p := range dispatch.Phases() {
					if string(p) == args[0] {
						phases = []dispatch.Phase{p}
						break
					}
				}
				if phases == nil {
					return lifecycle.NewUsageError(fmt.Sprintf("unknown phase %q", args[0]), nil)
				}
			}

			id, err := distro.Resolve(platform.Probe(), "/")
			if err != nil {
				return lifecycle.NewUnsupportedPlatformError("platform identification failed", err)
			}

			cfg, err := buildConfig(cmd, nil, f)
			if err != nil {
				return err
			}
			cfg.Mode = mode
			env, err := handlers.NewEnv(cfg, id)
			if err != nil {
				return err
			}
			reg, err := handlers.Build(env)
			if err != nil {
				return fmt.Errorf("failed to build handler catalog: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "platform: %s  mode: %s\n\n", id.String(), mode.String())
			for _, phase := range phases {
				res := dispatch.Resolve(reg, phase, id, mode)
				marker := "(unresolved)"
				if res.Found() {
					marker = res.Name
				} else if !phase.Mandatory() {
					marker = "(unresolved, optional)"
				}
				fmt.Fprintf(out, "%-16s -> %s\n", phase, marker)
				fmt.Fprintf(out, "%-16s    candidates: %s\n", "", strings.Join(res.Candidates, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&channel, "mode", "stable", "install mode (stable, testing, daily, git, onedir)")
	cmd.Flags().StringVar(&rev, "rev", "", "pinned version, branch, tag, or commit")

	return cmd
}
