package main

import (
	"fmt"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/spf13/cobra"

	"github.com/pennywise/backend/internal/domain"
	"github.com/pennywise/backend/internal/usecase"
)

type searchOptions struct {
	location     string
	mode         string
	enhance      bool
	alternatives bool
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	so := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find affordable spots, or cheaper alternatives to an item",
		Example: `  pennywise search coffee --location "Austin, TX"
  pennywise search "AirPods Pro" --alternatives`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := domain.ParseRankMode(so.mode)
			if err != nil {
				return err
			}

			cfg, logger, err := opts.setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			model, err := newAIModel(ctx, cfg, logger)
			if err != nil {
				return errors.Wrap(err, "initialize AI model")
			}

			svc, cleanup, err := newSearchService(ctx, cfg, model, logger)
			if err != nil {
				return errors.Wrap(err, "initialize search pipeline")
			}
			defer cleanup()

			query := strings.Join(args, " ")
			if so.alternatives {
				resp := svc.FindAlternatives(ctx, domain.AlternativesRequest{Item: query, Location: so.location})
				_, err = fmt.Fprintln(cmd.OutOrStdout(), usecase.FormatAlternatives(resp))
				return err
			}

			resp := svc.FindSpots(ctx, domain.SpotRequest{
				Query:    query,
				Location: so.location,
				Mode:     mode,
				Enhance:  so.enhance,
			})
			_, err = fmt.Fprintln(cmd.OutOrStdout(), usecase.FormatSpots(resp))
			return err
		},
	}

	cmd.Flags().StringVarP(&so.location, "location", "l", "", "city or area to search in")
	cmd.Flags().StringVarP(&so.mode, "mode", "m", "plain", "ranking mode: plain or affordability")
	cmd.Flags().BoolVarP(&so.enhance, "enhance", "e", false, "rewrite results with the AI model")
	cmd.Flags().BoolVarP(&so.alternatives, "alternatives", "a", false, "treat the query as an item and list cheaper alternatives")
	return cmd
}
