package usecase

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/pennywise/backend/internal/domain"
)

// MessageSource turns a transport's watch callbacks into a channel of messages
type MessageSource struct {
	transport domain.MessagingTransport
	logger    *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
	out    chan domain.IncomingMessage
}

// NewMessageSource creates a source reading from transport
func NewMessageSource(transport domain.MessagingTransport, logger *zap.Logger) *MessageSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MessageSource{
		transport: transport,
		logger:    logger.Named("message_source"),
		done:      make(chan struct{}),
		out:       make(chan domain.IncomingMessage),
	}
}

// Start begins watching the transport. The returned channel is closed after
// ctx is done and the transport has stopped watching.
func (s *MessageSource) Start(ctx context.Context) (<-chan domain.IncomingMessage, error) {
	err := s.transport.StartWatching(ctx, domain.WatchHandlers{
		OnNewMessage: s.deliver,
		OnError: func(err error) {
			s.logger.Warn("watch messages", zap.Error(err))
		},
	})
	if err != nil {
		return nil, err
	}

	go func() {
		<-ctx.Done()
		// release blocked deliveries first so the transport's poll loop can exit
		close(s.done)
		s.transport.StopWatching()
		s.shutdown()
	}()

	return s.out, nil
}

// deliver blocks until the message is consumed or the source shuts down
func (s *MessageSource) deliver(msg domain.IncomingMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}

	select {
	case s.out <- msg:
	case <-s.done:
		s.logger.Debug("drop message after shutdown", zap.String("message_id", msg.ID))
	}
}

func (s *MessageSource) shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	close(s.out)
}
