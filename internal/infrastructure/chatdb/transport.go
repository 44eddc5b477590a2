// Package chatdb implements domain.MessagingTransport on the local macOS
// Messages database. Messages are read from chat.db and replies are sent
// by scripting the Messages app.
package chatdb

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pennywise/backend/internal/domain"
)

// DefaultPollInterval is used when no interval is configured
const DefaultPollInterval = 2 * time.Second

// Config configures the chat.db transport
type Config struct {
	Path         string
	PollInterval time.Duration
}

// Transport polls chat.db for new incoming messages
type Transport struct {
	store    *store
	dbPath   string
	dbFile   string
	interval time.Duration
	send     scriptRunner
	logger   *zap.Logger

	mu       sync.Mutex
	watching bool
	stop     chan struct{}
	wg       sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
	closed    chan struct{}
}

// New opens the Messages database read-only
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Transport, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	st, err := openStore(ctx, cfg.Path)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrTransportUnavailable, "open chat database: %v", err)
	}

	path, _ := expandHome(cfg.Path)
	return &Transport{
		store:    st,
		dbPath:   path,
		dbFile:   filepath.Base(path),
		interval: cfg.PollInterval,
		send:     runOSAScript,
		logger:   logger.Named("chatdb"),
		closed:   make(chan struct{}),
	}, nil
}

// UnreadMessages returns unread incoming messages grouped by sender
func (t *Transport) UnreadMessages(ctx context.Context) ([]domain.UnreadThread, error) {
	if t.isClosed() {
		return nil, domain.ErrTransportClosed
	}
	return t.store.unread(ctx)
}

// Send delivers text to recipient through the Messages app
func (t *Transport) Send(ctx context.Context, recipient, text string) error {
	if t.isClosed() {
		return domain.ErrTransportClosed
	}
	return sendMessage(ctx, t.send, recipient, text)
}

// StartWatching reports every message that arrives after the call
func (t *Transport) StartWatching(ctx context.Context, handlers domain.WatchHandlers) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.isClosed() {
		return domain.ErrTransportClosed
	}
	if t.watching {
		return errors.New("chat database transport is already watching")
	}

	cursor, err := t.store.maxRowID(ctx)
	if err != nil {
		return err
	}

	// fsnotify only shortens latency; the ticker keeps polling without it
	var events <-chan fsnotify.Event
	var watchErrs <-chan error
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		t.logger.Warn("create file watcher, falling back to polling", zap.Error(err))
		watcher = nil
	} else if err := watcher.Add(t.dbDir()); err != nil {
		t.logger.Warn("watch chat database directory, falling back to polling", zap.Error(err))
		_ = watcher.Close()
		watcher = nil
	} else {
		events = watcher.Events
		watchErrs = watcher.Errors
	}

	t.stop = make(chan struct{})
	t.watching = true
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if watcher != nil {
			defer watcher.Close()
		}
		t.pollLoop(ctx, cursor, handlers, events, watchErrs)
	}()

	t.logger.Info("chat database polling started",
		zap.Int64("cursor", cursor),
		zap.Duration("interval", t.interval),
		zap.Bool("fsnotify", watcher != nil))
	return nil
}

// StopWatching stops the poll loop and waits for it to exit
func (t *Transport) StopWatching() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.watching {
		return
	}
	close(t.stop)
	t.wg.Wait()
	t.watching = false
	t.logger.Info("chat database polling stopped")
}

// Close stops watching and closes the database. Later calls return the first result.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() {
		t.StopWatching()
		close(t.closed)
		t.closeErr = t.store.close()
	})
	return t.closeErr
}

func (t *Transport) isClosed() bool {
	select {
	case <-t.closed:
		return true
	default:
		return false
	}
}

func (t *Transport) dbDir() string {
	return filepath.Dir(t.dbPath)
}

// pollLoop wakes on ticks or database file events. The limiter keeps bursts of
// file events from polling more often than once per interval.
func (t *Transport) pollLoop(
	ctx context.Context,
	cursor int64,
	handlers domain.WatchHandlers,
	events <-chan fsnotify.Event,
	watchErrs <-chan error,
) {
	limiter := rate.NewLimiter(rate.Every(t.interval), 1)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-t.stop:
			cancel()
		case <-loopCtx.Done():
		}
	}()

	for {
		select {
		case <-loopCtx.Done():
			return
		case <-ticker.C:
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !strings.HasPrefix(filepath.Base(ev.Name), t.dbFile) {
				continue
			}
		case err, ok := <-watchErrs:
			if !ok {
				watchErrs = nil
				continue
			}
			reportError(handlers, errors.Wrap(err, "watch chat database"))
			continue
		}

		if err := limiter.Wait(loopCtx); err != nil {
			return
		}

		msgs, next, err := t.store.messagesAfter(loopCtx, cursor)
		if err != nil {
			if loopCtx.Err() != nil {
				return
			}
			reportError(handlers, err)
			continue
		}
		cursor = next

		for _, msg := range msgs {
			if handlers.OnNewMessage != nil {
				handlers.OnNewMessage(msg)
			}
		}
	}
}

func reportError(handlers domain.WatchHandlers, err error) {
	if handlers.OnError != nil {
		handlers.OnError(err)
	}
}
