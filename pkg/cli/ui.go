package cli

import (
	"github.com/spf13/cobra"

	"policygen/pkg/client"
	"policygen/pkg/ui"
)

func newUICmd(rt *runtime) *cobra.Command {
	var apiURL string
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the terminal form against a running API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiURL == "" {
				apiURL = rt.cfg.APIURL
			}
			return ui.Run(client.New(apiURL), client.DefaultTimeout)
		},
	}
	cmd.Flags().StringVar(&apiURL, "api-url", "", "policy API base URL (default API_URL)")
	return cmd
}
