package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"mindweaver-server/internal/model"
)

// SessionRepository handles login_sessions rows.
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a SessionRepository.
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a login session.
func (r *SessionRepository) Create(ctx context.Context, session *model.LoginSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// GetByID loads a login session by its id, expired or not.
// Returns:
//   - *model.LoginSession: nil when not found
//   - error: database error
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*model.LoginSession, error) {
	var session model.LoginSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// Delete removes a login session. Deleting a missing row is not an error.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.LoginSession{}).Error
}

// DeleteExpired removes every session that expired before now.
// Returns:
//   - int64: rows removed
//   - error: database error
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&model.LoginSession{})
	return res.RowsAffected, res.Error
}
