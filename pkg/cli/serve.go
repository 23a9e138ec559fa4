package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"policygen/app"
)

func newServeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the policy generation API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return app.RunServer(ctx, rt.cfg, rt.log)
		},
	}
}
