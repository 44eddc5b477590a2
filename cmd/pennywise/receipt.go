package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pennywise/backend/internal/usecase"
)

func newReceiptCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "receipt <image>",
		Short: "Break down a receipt photo into items and total",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if err := cfg.ValidateAI(); err != nil {
				return err
			}

			ctx := cmd.Context()
			model, err := newAIModel(ctx, cfg, logger)
			if err != nil {
				return err
			}

			analysis, err := usecase.NewReceiptAnalyzer(model, logger).AnalyzeFile(ctx, args[0], "")
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), usecase.FormatReceiptAnalysis(analysis))
			return err
		},
	}
}
