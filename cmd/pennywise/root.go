package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pennywise/backend/config"
)

const version = "1.0.0"

// rootOptions are the flags shared by every subcommand
type rootOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "pennywise",
		Short:         "Budget spot search and receipt analysis",
		Long:          `pennywise finds affordable places and products, and breaks down receipt photos sent over chat.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(opts),
		newBotCmd(opts),
		newSearchCmd(opts),
		newReceiptCmd(opts),
	)
	return root
}

// setup loads configuration and builds the logger for a command
func (o *rootOptions) setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(cfg.Server.Environment, o.verbose)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newLogger builds a debug-level development logger for local runs or when
// verbose is set, and a JSON production logger otherwise.
func newLogger(environment string, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if environment == "development" || verbose {
		zcfg = zap.NewDevelopmentConfig()
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("version", version)), nil
}
