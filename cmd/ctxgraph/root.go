package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/centraunit/ctxgraph/internal/logging"
)

type rootFlags struct {
	logLevel  string
	logFormat string
}

func (f *rootFlags) logger(cmd *cobra.Command) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Level:  f.logLevel,
		Format: f.logFormat,
		Writer: cmd.ErrOrStderr(),
	})
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "ctxgraph",
		Short:         "Run node graphs and service registry scripts against a context",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flags.logFormat, "log-format", "console", "Log format (console, json)")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
