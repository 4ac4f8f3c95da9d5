// Package session keeps track of who is signed in.
//
// A browser holds a signed cookie naming a session id. The matching record,
// with a snapshot of the account taken at login, lives server-side in a Store.
// Ending a session deletes the record, so a copied cookie stops working.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mindweaver-server/pkg/jwt"
)

// ErrNoSession means the cookie is missing, invalid, expired, or its record is gone.
var ErrNoSession = errors.New("no active session")

// Identity is the account snapshot stored with a session.
// It is not refreshed from the accounts table while the session lives.
type Identity struct {
	AccountID int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Picture   string `json:"picture,omitempty"`
}

// Record is a server-side session.
type Record struct {
	ID        string    `json:"id"`
	Identity  Identity  `json:"identity"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store persists session records.
type Store interface {
	// Save writes a record that must disappear after rec.ExpiresAt.
	Save(ctx context.Context, rec *Record) error
	// Get returns nil, nil when the record is absent or expired.
	Get(ctx context.Context, id string) (*Record, error)
	// Delete succeeds for unknown ids.
	Delete(ctx context.Context, id string) error
}

// Manager issues, resolves and revokes sessions.
type Manager struct {
	store  Store
	tokens *jwt.JWTService
	now    func() time.Time
}

// NewManager creates a Manager.
// Parameters:
//   - store: where records live
//   - tokens: signs the cookie value; its lifetime is the session TTL
func NewManager(store Store, tokens *jwt.JWTService) *Manager {
	return &Manager{store: store, tokens: tokens, now: time.Now}
}

// Create starts a session for ident.
// Returns:
//   - string: signed cookie value
//   - *Record: the stored record
//   - error: signing or store error
func (m *Manager) Create(ctx context.Context, ident Identity) (string, *Record, error) {
	id := uuid.NewString()
	token, expiresAt, err := m.tokens.GenerateSessionToken(id, ident.AccountID, m.now())
	if err != nil {
		return "", nil, fmt.Errorf("sign session token: %w", err)
	}

	rec := &Record{ID: id, Identity: ident, ExpiresAt: expiresAt}
	if err := m.store.Save(ctx, rec); err != nil {
		return "", nil, fmt.Errorf("save session: %w", err)
	}
	return token, rec, nil
}

// Resolve maps a cookie value to its live record.
// Returns:
//   - *Record: the session
//   - error: ErrNoSession, or a store error
func (m *Manager) Resolve(ctx context.Context, token string) (*Record, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	claims, err := m.tokens.ValidateSessionToken(token)
	if err != nil {
		return nil, ErrNoSession
	}

	rec, err := m.store.Get(ctx, claims.SessionID())
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if rec == nil || !m.now().Before(rec.ExpiresAt) || rec.Identity.AccountID != claims.AccountID {
		return nil, ErrNoSession
	}
	return rec, nil
}

// Destroy deletes the record named by the cookie.
// Unknown, expired or malformed cookies are not an error.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := m.tokens.ParseIgnoringExpiry(token)
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, claims.SessionID()); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
