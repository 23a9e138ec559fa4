package cli

import (
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
)

func newConfigCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rt.cfg
			if cfg.EmbAPIKey != "" {
				cfg.EmbAPIKey = "***"
			}
			_, err := pp.Fprintln(cmd.OutOrStdout(), cfg)
			return err
		},
	}
}
