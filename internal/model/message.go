package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Message roles
const (
	MessageRoleUser      = "user"      // text the person typed
	MessageRoleAssistant = "assistant" // generated story
)

// ErrInvalidMessage is returned by the create hook for malformed rows.
var ErrInvalidMessage = errors.New("invalid message")

// Message is one entry of a conversation.
// Table messages. Messages are append-only.
type Message struct {
	// ID auto-increment primary key
	ID int64 `gorm:"primaryKey" json:"id"`

	// ConversationID parent, FK conversations.id
	ConversationID int64 `gorm:"index;not null" json:"conversation_id"`

	// Role user or assistant
	Role string `gorm:"size:20;not null" json:"role"`

	// Content stored as TEXT, stories can be long
	Content string `gorm:"type:text;not null" json:"content"`

	// CreatedAt primary ordering key within a conversation, ties broken by ID
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName sets the table name.
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate rejects rows the rest of the system would not expect to read back.
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	switch m.Role {
	case MessageRoleUser:
		if strings.TrimSpace(m.Content) == "" {
			return fmt.Errorf("%w: empty user content", ErrInvalidMessage)
		}
	case MessageRoleAssistant:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidMessage, m.Role)
	}
	return nil
}
