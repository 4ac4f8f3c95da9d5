// Package repository implements the data access layer.
// All database interaction goes through here.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"mindweaver-server/internal/model"
)

// ErrAccountConflict means the e-mail is already bound to a different Google identity.
var ErrAccountConflict = errors.New("account email belongs to another identity")

// AccountRepository handles account rows.
type AccountRepository struct {
	db *gorm.DB // GORM handle
}

// NewAccountRepository creates an AccountRepository.
// Parameters:
//   - db: GORM handle
//
// Returns:
//   - *AccountRepository: repository instance
func NewAccountRepository(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account.
// Parameters:
//   - ctx: request context
//   - account: the ID is filled in on success
//
// Returns:
//   - error: fails on a duplicate google_id or email
func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

// CreateOrGet returns the account for account.GoogleID, inserting it if absent.
// The insert ignores a google_id conflict and the row is then read back, so two
// concurrent first logins end up with the same row and the first write wins.
// Parameters:
//   - ctx: request context
//   - account: candidate row, only used when no row exists yet
//
// Returns:
//   - *model.Account: the stored account
//   - bool: true when this call created it
//   - error: database error, or ErrAccountConflict
func (r *AccountRepository) CreateOrGet(ctx context.Context, account *model.Account) (*model.Account, bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "google_id"}},
			DoNothing: true,
		}).
		Create(account)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, false, ErrAccountConflict
		}
		return nil, false, res.Error
	}

	stored, err := r.GetByGoogleID(ctx, account.GoogleID)
	if err != nil {
		return nil, false, err
	}
	if stored == nil {
		// mysql folds every unique violation into the upsert, so a missing row
		// after a silent insert means the email collided
		return nil, false, ErrAccountConflict
	}
	return stored, res.RowsAffected > 0, nil
}

// GetByID looks an account up by primary key.
// Returns:
//   - *model.Account: nil when not found
//   - error: database error (not-found excluded)
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByGoogleID looks an account up by its external subject id.
func (r *AccountRepository) GetByGoogleID(ctx context.Context, googleID string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Where("google_id = ?", googleID).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetByEmail looks an account up by e-mail.
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}
