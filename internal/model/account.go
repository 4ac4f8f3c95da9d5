// Package model defines the structs that map to database tables.
package model

import (
	"time"
)

// Account is a person who has signed in with Google.
// Table accounts. Rows are created on first successful login only.
type Account struct {
	// ID auto-increment primary key
	ID int64 `gorm:"primaryKey" json:"id"`

	// GoogleID stable subject id from the identity provider
	// Unique: concurrent first logins race on this index and only one row wins
	GoogleID string `gorm:"size:255;uniqueIndex;not null" json:"google_id"`

	// Email as reported by Google at first login
	Email string `gorm:"size:255;uniqueIndex;not null" json:"email"`

	// Name display name
	Name string `gorm:"size:255;not null" json:"name"`

	// PictureURL avatar URL, may be NULL
	PictureURL *string `gorm:"type:text" json:"picture,omitempty"`

	// CreatedAt filled by GORM
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// UpdatedAt updated by GORM
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Conversations owned by this account (one-to-many)
	Conversations []Conversation `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName sets the table name.
func (Account) TableName() string {
	return "accounts"
}
