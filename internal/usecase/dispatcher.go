package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pennywise/backend/internal/domain"
)

const (
	// ReceiptPromptReply answers any text-only message
	ReceiptPromptReply = "👋 Send me a photo of a receipt and I'll break down the items and total for you."

	// ProcessingErrorReply is sent when handling an image fails unexpectedly
	ProcessingErrorReply = "Sorry, I had trouble processing that image. Please try again."

	defaultMaxConcurrent = 5
)

// ReceiptFileAnalyzer is the part of ReceiptAnalyzer the dispatcher needs
type ReceiptFileAnalyzer interface {
	AnalyzeFile(ctx context.Context, path, mimeType string) (domain.ReceiptAnalysis, error)
}

// Dispatcher routes incoming chat messages to the receipt analyzer or the static text reply
type Dispatcher struct {
	transport     domain.MessagingTransport
	analyzer      ReceiptFileAnalyzer
	maxConcurrent int
	logger        *zap.Logger
}

// NewDispatcher creates a dispatcher replying through transport.
// maxConcurrent bounds how many messages are handled at once.
func NewDispatcher(transport domain.MessagingTransport, analyzer ReceiptFileAnalyzer, maxConcurrent int, logger *zap.Logger) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		transport:     transport,
		analyzer:      analyzer,
		maxConcurrent: maxConcurrent,
		logger:        logger.Named("dispatcher"),
	}
}

// Run handles messages from source until it is closed or ctx is done.
// It returns after every in-flight handler has finished. Handlers already
// started are not cancelled with ctx, so their replies still go out.
func (d *Dispatcher) Run(ctx context.Context, source <-chan domain.IncomingMessage) error {
	var g errgroup.Group
	g.SetLimit(d.maxConcurrent)
	handlerCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			_ = g.Wait()
			return ctx.Err()
		case msg, ok := <-source:
			if !ok {
				return g.Wait()
			}
			g.Go(func() error {
				d.Handle(handlerCtx, msg)
				return nil
			})
		}
	}
}

// Handle processes a single message. Every image attachment is analyzed and
// answered independently; a text-only message gets the receipt prompt.
func (d *Dispatcher) Handle(ctx context.Context, msg domain.IncomingMessage) {
	logger := d.logger.With(zap.String("message_id", msg.ID), zap.String("sender", msg.Sender))
	defer removeTemporary(logger, msg.Attachments)

	var images []domain.Attachment
	for _, att := range msg.Attachments {
		if att.IsImage() {
			images = append(images, att)
			continue
		}
		logger.Debug("ignore non-image attachment",
			zap.String("filename", att.Filename),
			zap.String("mime", att.MIMEType))
	}

	switch {
	case len(images) > 0:
		for _, att := range images {
			d.send(ctx, logger, msg.Sender, d.replyForImage(ctx, logger, att))
		}
	case msg.HasText() && len(msg.Attachments) == 0:
		d.send(ctx, logger, msg.Sender, ReceiptPromptReply)
	default:
		logger.Debug("nothing to reply to")
	}
}

// replyForImage analyzes one attachment and renders the reply text.
// Panics are recovered so one bad image cannot take down the loop.
func (d *Dispatcher) replyForImage(ctx context.Context, logger *zap.Logger, att domain.Attachment) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while analyzing attachment",
				zap.String("path", att.Path),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			reply = ProcessingErrorReply
		}
	}()

	analysis, err := d.analyzer.AnalyzeFile(ctx, att.Path, att.MIMEType)
	if err != nil {
		logger.Error("analyze attachment", zap.String("path", att.Path), zap.Error(err))
		return ProcessingErrorReply
	}

	if failure, ok := analysis.(domain.ReceiptFailure); ok {
		logger.Info("receipt analysis failed", zap.String("reason", failure.Message))
	}
	return FormatReceiptAnalysis(analysis)
}

// removeTemporary deletes transport downloads once their message is handled
func removeTemporary(logger *zap.Logger, attachments []domain.Attachment) {
	for _, att := range attachments {
		if !att.Temporary {
			continue
		}
		if err := os.Remove(att.Path); err != nil && !os.IsNotExist(err) {
			logger.Warn("remove downloaded attachment", zap.String("path", att.Path), zap.Error(err))
		}
	}
}

func (d *Dispatcher) send(ctx context.Context, logger *zap.Logger, recipient, text string) {
	err := d.transport.Send(ctx, recipient, text)
	switch {
	case err == nil:
		logger.Debug("reply sent", zap.Int("length", len(text)))
	case errors.Is(err, domain.ErrTransportUnavailable):
		logger.Error("messaging app is not running, reply dropped", zap.Error(err))
	default:
		logger.Error("send reply", zap.Error(fmt.Errorf("send to %s: %w", recipient, err)))
	}
}
