package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"policygen/app"
)

func newIndexCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Rebuild the document store from the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := app.RunIndexing(cmd.Context(), rt.cfg, rt.log)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if rep.Skipped {
				color.New(color.FgYellow, color.Bold).Fprintf(out, "Warning: no %v files found in %s; store left unchanged.\n", rt.cfg.IndexExtensions, rt.cfg.DataDir)
				return nil
			}
			color.New(color.FgGreen).Fprintf(out, "Indexed %d files into %d chunks (%s, dim %d) at %s\n",
				len(rep.Files), rep.Chunks, rep.Embedder, rep.Dimension, rt.cfg.StorePath)
			return nil
		},
	}
}
