package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saltboot/saltboot/pkg/distro"
	"github.com/saltboot/saltboot/pkg/lifecycle"
	"github.com/saltboot/saltboot/pkg/platform"
)

func newDetectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "detect",
		Short: "Print the resolved host identity",
		Long: `Resolve the host's distribution identity and print it as JSON.

The output is the exact identity handler dispatch would use: the
normalized distribution id, parsed version, codename, and the base
distribution when the host runs a derivative. No state is touched.`,
		Example: `  saltboot detect`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := distro.Resolve(platform.Probe(), "/")
			if err != nil {
				return lifecycle.NewUnsupportedPlatformError("platform identification failed", err)
			}
			out, err := json.MarshalIndent(id, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode identity: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
