package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the config file and state storage",
		Long:  "Create the configuration and data directories, write a default config.yaml\nif none exists, and prepare the configured state backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if err := os.MkdirAll(a.dirs.Data, 0o755); err != nil {
				return systemError("create data directory", err)
			}
			written, err := writeConfigIfMissing(a.dirs.ConfigFile(), a.cfg)
			if err != nil {
				return systemError("write config", err)
			}

			p, err := a.openPersister(cmd.Context())
			if err != nil {
				return systemError("initialize state storage", err)
			}
			if err := p.Close(); err != nil {
				return systemError("finalize state storage", err)
			}

			if written {
				fmt.Fprintf(out, "wrote %s\n", a.dirs.ConfigFile())
			}
			fmt.Fprintf(out, "state backend %s in %s\n", a.cfg.StateBackend, a.dirs.Data)
			return nil
		},
	}
}
