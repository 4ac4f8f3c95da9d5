package model

import (
	"time"
)

// Conversation is one chat thread of an account.
// Table conversations. The title is fixed at creation and never rewritten.
type Conversation struct {
	// ID auto-increment primary key, exposed to clients as chat_id
	ID int64 `gorm:"primaryKey" json:"id"`

	// AccountID owner, FK accounts.id
	AccountID int64 `gorm:"index;not null" json:"account_id"`

	// Title derived from the first utterance, may be NULL
	Title *string `gorm:"size:255" json:"title"`

	// CreatedAt filled by GORM
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// UpdatedAt bumped whenever a message is appended
	UpdatedAt time.Time `gorm:"autoUpdateTime;index" json:"updated_at"`

	// Messages in this conversation (one-to-many)
	Messages []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName sets the table name.
func (Conversation) TableName() string {
	return "conversations"
}

// OwnedBy reports whether the conversation belongs to accountID.
func (c *Conversation) OwnedBy(accountID int64) bool {
	return c.AccountID == accountID
}
