package domain

import "strings"

// Attachment is a file delivered alongside a chat message
type Attachment struct {
	Path     string `json:"path"`
	MIMEType string `json:"mimeType"`
	Filename string `json:"filename"`
	// Temporary files were downloaded by the transport and are removed once
	// the message has been handled
	Temporary bool `json:"-"`
}

// IsImage reports whether the attachment carries an image MIME type
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(a.MIMEType), "image/")
}

// IncomingMessage is a chat message observed by a messaging transport
type IncomingMessage struct {
	ID          string       `json:"id"`
	Sender      string       `json:"sender"`
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// HasText reports whether the message carries non-blank text
func (m IncomingMessage) HasText() bool {
	return strings.TrimSpace(m.Text) != ""
}

// UnreadThread groups unread messages by sender
type UnreadThread struct {
	Sender   string            `json:"sender"`
	Messages []IncomingMessage `json:"messages"`
}

// WatchHandlers are the callbacks a transport invokes while watching
type WatchHandlers struct {
	OnNewMessage func(IncomingMessage)
	OnError      func(error)
}
