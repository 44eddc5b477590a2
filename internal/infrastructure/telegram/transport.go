// Package telegram implements domain.MessagingTransport on the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	"go.uber.org/zap"
	tb "gopkg.in/telebot.v3"

	"github.com/pennywise/backend/internal/domain"
)

// photoMIMEType is the encoding Telegram uses for compressed photos
const photoMIMEType = "image/jpeg"

// Transport receives messages by long polling and replies through sendMessage
type Transport struct {
	bot      *tb.Bot
	download func(file *tb.File, path string) error
	tmpDir   string
	logger   *zap.Logger

	mu       sync.Mutex
	watching bool
	closed   bool
}

// New creates a Telegram transport. api may be empty to use the public Bot API.
func New(token, api string, pollTimeout time.Duration, logger *zap.Logger) (*Transport, error) {
	if pollTimeout <= 0 {
		pollTimeout = 10 * time.Second
	}
	return newTransport(tb.Settings{
		Token:  token,
		URL:    api,
		Poller: &tb.LongPoller{Timeout: pollTimeout},
	}, logger)
}

func newTransport(settings tb.Settings, logger *zap.Logger) (*Transport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("telegram")

	settings.OnError = func(err error, c tb.Context) {
		logger.Error("telegram handler", zap.Error(err))
	}

	bot, err := tb.NewBot(settings)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrTransportUnavailable, "new telegram bot: %v", err)
	}

	tmpDir, err := os.MkdirTemp("", "pennywise-telegram-*")
	if err != nil {
		return nil, errors.Wrap(err, "create attachment dir")
	}

	return &Transport{
		bot:      bot,
		download: bot.Download,
		tmpDir:   tmpDir,
		logger:   logger,
	}, nil
}

// UnreadMessages always returns nothing. The Bot API has no read state;
// pending updates are delivered by the poller once watching starts.
func (t *Transport) UnreadMessages(ctx context.Context) ([]domain.UnreadThread, error) {
	return nil, nil
}

// Send delivers text to the chat identified by recipient
func (t *Transport) Send(ctx context.Context, recipient, text string) error {
	if t.isClosed() {
		return domain.ErrTransportClosed
	}

	chatID, err := strconv.ParseInt(recipient, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "invalid chat id %q", recipient)
	}

	if _, err := t.bot.Send(tb.ChatID(chatID), text); err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return errors.Wrapf(domain.ErrTransportUnavailable, "send to %d: %v", chatID, err)
		}
		return errors.Wrapf(err, "send to %d", chatID)
	}
	return nil
}

// StartWatching registers message handlers and starts long polling
func (t *Transport) StartWatching(ctx context.Context, handlers domain.WatchHandlers) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return domain.ErrTransportClosed
	}
	if t.watching {
		return errors.New("telegram transport is already watching")
	}

	handle := func(c tb.Context) error {
		msg, err := t.toIncoming(c.Message())
		if err != nil {
			if handlers.OnError != nil {
				handlers.OnError(err)
			}
			return nil
		}
		if handlers.OnNewMessage != nil {
			handlers.OnNewMessage(msg)
		}
		return nil
	}

	t.bot.Handle(tb.OnText, handle)
	t.bot.Handle(tb.OnPhoto, handle)
	t.bot.Handle(tb.OnDocument, handle)

	t.watching = true
	go t.bot.Start()
	t.logger.Info("telegram polling started")
	return nil
}

// StopWatching stops long polling
func (t *Transport) StopWatching() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.watching {
		return
	}
	t.bot.Stop()
	t.watching = false
	t.logger.Info("telegram polling stopped")
}

// Close stops polling and removes any downloads the dispatcher has not
// cleaned up yet
func (t *Transport) Close() error {
	t.StopWatching()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	return os.RemoveAll(t.tmpDir)
}

func (t *Transport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// toIncoming converts a Bot API message, downloading any photo or document
func (t *Transport) toIncoming(msg *tb.Message) (domain.IncomingMessage, error) {
	if msg == nil || msg.Chat == nil {
		return domain.IncomingMessage{}, errors.New("update without message")
	}

	incoming := domain.IncomingMessage{
		ID:     fmt.Sprintf("%d:%d", msg.Chat.ID, msg.ID),
		Sender: strconv.FormatInt(msg.Chat.ID, 10),
		Text:   msg.Text,
	}
	if incoming.Text == "" {
		incoming.Text = msg.Caption
	}

	var (
		file     *tb.File
		mimeType string
		name     string
	)
	switch {
	case msg.Photo != nil:
		file = &msg.Photo.File
		mimeType = photoMIMEType
		name = msg.Photo.UniqueID + ".jpg"
	case msg.Document != nil:
		file = &msg.Document.File
		mimeType = msg.Document.MIME
		name = msg.Document.FileName
		if name == "" {
			name = msg.Document.UniqueID
		}
	}

	if file != nil {
		path := filepath.Join(t.tmpDir, fmt.Sprintf("%d-%s", msg.ID, filepath.Base(name)))
		if err := t.download(file, path); err != nil {
			return domain.IncomingMessage{}, errors.Wrapf(err, "download attachment of message %s", incoming.ID)
		}
		incoming.Attachments = []domain.Attachment{{
			Path:      path,
			MIMEType:  mimeType,
			Filename:  name,
			Temporary: true,
		}}
	}

	return incoming, nil
}
