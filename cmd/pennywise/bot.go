package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Laisky/errors/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pennywise/backend/internal/domain"
	"github.com/pennywise/backend/internal/usecase"
)

func newBotCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Answer receipt photos sent over chat",
		Long: `bot watches the configured messaging transport and replies to every
receipt photo with its line items and total.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if err := cfg.ValidateMessaging(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			model, err := newAIModel(ctx, cfg, logger)
			if err != nil {
				return errors.Wrap(err, "initialize AI model")
			}

			transport, err := newTransport(ctx, cfg, logger)
			if err != nil {
				logger.Error("messaging transport failed to start",
					zap.String("transport", cfg.Messaging.Transport), zap.Error(err))
				return errors.Wrap(err, "initialize messaging transport")
			}
			defer func() {
				if err := transport.Close(); err != nil {
					logger.Warn("close transport", zap.Error(err))
				}
			}()

			logUnread(ctx, transport, logger)

			source := usecase.NewMessageSource(transport, logger)
			messages, err := source.Start(ctx)
			if err != nil {
				return errors.Wrap(err, "start watching messages")
			}

			dispatcher := usecase.NewDispatcher(transport, usecase.NewReceiptAnalyzer(model, logger),
				cfg.Messaging.MaxConcurrent, logger)

			logger.Info("bot started",
				zap.String("transport", cfg.Messaging.Transport),
				zap.Duration("poll_interval", cfg.Messaging.PollInterval),
				zap.Int("max_concurrent", cfg.Messaging.MaxConcurrent))

			err = dispatcher.Run(ctx, messages)
			logger.Info("bot stopped")
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}

// logUnread reports messages that arrived while the bot was offline.
// They are not answered.
func logUnread(ctx context.Context, transport domain.MessagingTransport, logger *zap.Logger) {
	threads, err := transport.UnreadMessages(ctx)
	if err != nil {
		logger.Warn("list unread messages", zap.Error(err))
		return
	}

	total := 0
	for _, thread := range threads {
		total += len(thread.Messages)
		logger.Debug("unread thread",
			zap.String("sender", thread.Sender),
			zap.Int("messages", len(thread.Messages)))
	}
	if total > 0 {
		logger.Info("skipping unread messages", zap.Int("threads", len(threads)), zap.Int("messages", total))
	}
}
