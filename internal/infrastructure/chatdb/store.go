package chatdb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Laisky/errors/v2"
	"github.com/gabriel-vasile/mimetype"
	_ "modernc.org/sqlite"

	"github.com/pennywise/backend/internal/domain"
)

// batchSize caps how many rows one poll reads
const batchSize = 100

const (
	selectMaxRowID = `SELECT COALESCE(MAX(ROWID), 0) FROM message`

	selectNewMessages = `
SELECT m.ROWID, COALESCE(m.guid, ''), COALESCE(m.text, ''), COALESCE(h.id, '')
FROM message m
LEFT JOIN handle h ON h.ROWID = m.handle_id
WHERE m.ROWID > ? AND m.is_from_me = 0
ORDER BY m.ROWID
LIMIT ?`

	selectUnreadMessages = `
SELECT m.ROWID, COALESCE(m.guid, ''), COALESCE(m.text, ''), COALESCE(h.id, '')
FROM message m
LEFT JOIN handle h ON h.ROWID = m.handle_id
WHERE m.is_read = 0 AND m.is_from_me = 0
ORDER BY m.ROWID`

	selectAttachments = `
SELECT COALESCE(a.filename, ''), COALESCE(a.mime_type, ''), COALESCE(a.transfer_name, '')
FROM attachment a
JOIN message_attachment_join j ON j.attachment_id = a.ROWID
WHERE j.message_id = ?
ORDER BY a.ROWID`
)

// store reads the Messages database without ever writing to it
type store struct {
	db *sql.DB
}

// openStore opens path read-only
func openStore(ctx context.Context, path string) (*store, error) {
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}

	dsn := path + "?_pragma=query_only(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "ping %s", path)
	}

	return &store{db: db}, nil
}

func (s *store) close() error {
	return s.db.Close()
}

// maxRowID returns the newest message row id
func (s *store) maxRowID(ctx context.Context) (int64, error) {
	var id int64
	if err := s.db.QueryRowContext(ctx, selectMaxRowID).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "query max message id")
	}
	return id, nil
}

// messagesAfter returns incoming messages with a row id above cursor and the
// new cursor position
func (s *store) messagesAfter(ctx context.Context, cursor int64) ([]domain.IncomingMessage, int64, error) {
	rows, err := s.db.QueryContext(ctx, selectNewMessages, cursor, batchSize)
	if err != nil {
		return nil, cursor, errors.Wrap(err, "query new messages")
	}

	msgs, last, err := s.scanMessages(ctx, rows)
	if err != nil {
		return nil, cursor, err
	}
	if last > cursor {
		cursor = last
	}
	return msgs, cursor, nil
}

// unread returns unread incoming messages grouped by sender, in first-seen order
func (s *store) unread(ctx context.Context) ([]domain.UnreadThread, error) {
	rows, err := s.db.QueryContext(ctx, selectUnreadMessages)
	if err != nil {
		return nil, errors.Wrap(err, "query unread messages")
	}

	msgs, _, err := s.scanMessages(ctx, rows)
	if err != nil {
		return nil, err
	}

	var threads []domain.UnreadThread
	index := make(map[string]int)
	for _, msg := range msgs {
		i, ok := index[msg.Sender]
		if !ok {
			i = len(threads)
			index[msg.Sender] = i
			threads = append(threads, domain.UnreadThread{Sender: msg.Sender})
		}
		threads[i].Messages = append(threads[i].Messages, msg)
	}
	return threads, nil
}

// scanMessages reads message rows, then loads attachments for each.
// rows is closed before attachments are queried.
func (s *store) scanMessages(ctx context.Context, rows *sql.Rows) ([]domain.IncomingMessage, int64, error) {
	type row struct {
		id  int64
		msg domain.IncomingMessage
	}

	var (
		scanned []row
		last    int64
	)
	for rows.Next() {
		var r row
		var guid string
		if err := rows.Scan(&r.id, &guid, &r.msg.Text, &r.msg.Sender); err != nil {
			rows.Close()
			return nil, 0, errors.Wrap(err, "scan message")
		}
		r.msg.ID = guid
		if r.msg.ID == "" {
			r.msg.ID = strconv.FormatInt(r.id, 10)
		}
		scanned = append(scanned, r)
		last = r.id
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, 0, errors.Wrap(err, "iterate messages")
	}
	rows.Close()

	msgs := make([]domain.IncomingMessage, 0, len(scanned))
	for _, r := range scanned {
		attachments, err := s.attachments(ctx, r.id)
		if err != nil {
			return nil, 0, err
		}
		r.msg.Attachments = attachments
		msgs = append(msgs, r.msg)
	}
	return msgs, last, nil
}

func (s *store) attachments(ctx context.Context, messageID int64) ([]domain.Attachment, error) {
	rows, err := s.db.QueryContext(ctx, selectAttachments, messageID)
	if err != nil {
		return nil, errors.Wrapf(err, "query attachments of message %d", messageID)
	}
	defer rows.Close()

	var out []domain.Attachment
	for rows.Next() {
		var att domain.Attachment
		if err := rows.Scan(&att.Path, &att.MIMEType, &att.Filename); err != nil {
			return nil, errors.Wrap(err, "scan attachment")
		}
		if att.Path == "" {
			continue
		}
		if p, err := expandHome(att.Path); err == nil {
			att.Path = p
		}
		if att.Filename == "" {
			att.Filename = filepath.Base(att.Path)
		}
		if att.MIMEType == "" {
			att.MIMEType = sniffMIME(att.Path)
		}
		out = append(out, att)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate attachments")
	}
	return out, nil
}

// sniffMIME detects the type from file content, then from the extension
func sniffMIME(path string) string {
	if m, err := mimetype.DetectFile(path); err == nil && m.String() != "application/octet-stream" {
		return m.String()
	}
	if m := extensionMIME(filepath.Ext(path)); m != "" {
		return m
	}
	return "application/octet-stream"
}

func extensionMIME(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".heic":
		return "image/heic"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	default:
		return ""
	}
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve home directory")
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
