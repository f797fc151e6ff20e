package support

import (
	"errors"
	"strings"
	"time"
)

// SenderType identifies who authored a message.
type SenderType int16

const (
	SenderChatbot SenderType = 1
	SenderAgent   SenderType = 2
	SenderClient  SenderType = 3
)

// Message is an immutable log entry in a conversation. UserID is nil for
// chatbot and client messages.
type Message struct {
	ID             int64      `db:"mensaje_id"`
	ConversationID int64      `db:"conversacion_id"`
	Content        string     `db:"contenido"`
	Sender         SenderType `db:"remitente"`
	UserID         *int64     `db:"usuario_id"`
	MediaID        *int64     `db:"archivo_id"`
	CreatedAt      time.Time  `db:"fecha_creacion"`
}

// MessageMedia is a file attached to exactly one message.
type MessageMedia struct {
	ID        int64      `db:"archivo_id"`
	Filename  string     `db:"nombre_archivo"`
	URL       string     `db:"url"`
	MimeType  string     `db:"metatipo"`
	Size      int64      `db:"tamano"`
	Sender    SenderType `db:"remitente"`
	CreatedAt time.Time  `db:"fecha_creacion"`
}

// MessageView is a message joined with its author name and attachment fields,
// as served to the conversation history endpoint.
type MessageView struct {
	ID             int64      `json:"id"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"created_at"`
	Sender         SenderType `json:"sender_type"`
	UserName       string     `json:"user_name,omitempty"`
	Attachment     string     `json:"attachment,omitempty"`
	AttachmentType string     `json:"attachment_type,omitempty"`
	AttachmentName string     `json:"attachment_name,omitempty"`
}

// ErrEmptyMessage rejects messages with neither content nor attachment.
var ErrEmptyMessage = errors.New("support: message has no content or attachment")

// NewMessage validates and normalizes a message before persistence.
func NewMessage(m Message, hasMedia bool) (*Message, error) {
	m.Content = strings.TrimSpace(m.Content)
	if m.Content == "" && !hasMedia {
		return nil, ErrEmptyMessage
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return &m, nil
}
