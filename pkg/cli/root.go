package cli

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"policygen/config"
	"policygen/pkg/logger"
)

// state shared by subcommands once PersistentPreRunE has run
type runtime struct {
	cfgFile string
	cfg     config.AppConfig
	log     *logrus.Logger
}

// NewRootCmd builds the policyctl command tree.
func NewRootCmd() *cobra.Command {
	rt := &runtime{}
	root := &cobra.Command{
		Use:           "policyctl",
		Short:         "Index insurance documents and serve the policy generation API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Printf("[cfg] No .env file found or error loading: %v", err)
			}
			cfg, err := config.LoadFrom(rt.cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			rt.cfg = cfg
			rt.log = logger.New(cfg.LogLevel, cfg.LogFormat)
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&rt.cfgFile, "config", "c", "", "YAML config file (default ./config.yaml when present)")

	root.AddCommand(
		newIndexCmd(rt),
		newServeCmd(rt),
		newPreviewCmd(rt),
		newUICmd(rt),
		newConfigCmd(rt),
	)
	return root
}

// Execute runs the command tree with args, writing output to out.
func Execute(ctx context.Context, args []string, out io.Writer) error {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	return root.ExecuteContext(ctx)
}
