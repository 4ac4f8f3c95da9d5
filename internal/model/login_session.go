package model

import (
	"time"
)

// LoginSession is the server-side half of a browser session.
// Table login_sessions, only used when session.store is "database".
// The identity fields are a snapshot taken at login.
type LoginSession struct {
	// ID random UUID, also carried in the cookie as the token id
	ID string `gorm:"primaryKey;size:36" json:"id"`

	// AccountID FK accounts.id
	AccountID int64 `gorm:"index;not null" json:"account_id"`

	Email      string  `gorm:"size:255;not null" json:"email"`
	Name       string  `gorm:"size:255;not null" json:"name"`
	PictureURL *string `gorm:"type:text" json:"picture,omitempty"`

	// ExpiresAt rows past this instant are treated as absent
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Account *Account `gorm:"foreignKey:AccountID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName sets the table name.
func (LoginSession) TableName() string {
	return "login_sessions"
}

// Expired reports whether the session is past its expiry at now.
func (s *LoginSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
