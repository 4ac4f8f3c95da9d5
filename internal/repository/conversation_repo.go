package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"mindweaver-server/internal/model"
)

// ConversationRepository handles conversation rows.
type ConversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a ConversationRepository.
func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create inserts a conversation.
// Parameters:
//   - ctx: request context
//   - conversation: ID and timestamps are filled in
//
// Returns:
//   - error: database error, including a missing owner account
func (r *ConversationRepository) Create(ctx context.Context, conversation *model.Conversation) error {
	return r.db.WithContext(ctx).Create(conversation).Error
}

// GetByID loads a conversation without checking ownership.
// Parameters:
//   - ctx: request context
//   - id: conversation ID
//
// Returns:
//   - *model.Conversation: nil when not found
//   - error: database error
func (r *ConversationRepository) GetByID(ctx context.Context, id int64) (*model.Conversation, error) {
	var conversation model.Conversation
	err := r.db.WithContext(ctx).First(&conversation, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversation, nil
}

// ListByAccount returns an account's conversations, most recently active first.
// Parameters:
//   - ctx: request context
//   - accountID: owner
//   - limit: maximum rows, <= 0 means no cap
//
// Returns:
//   - []model.Conversation: never nil
//   - error: database error
func (r *ConversationRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]model.Conversation, error) {
	conversations := make([]model.Conversation, 0)
	query := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("updated_at DESC").
		Order("id DESC") // stable order for equal timestamps
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&conversations).Error
	return conversations, err
}

// Touch sets updated_at to now.
// Pass a transaction handle as tx to run inside it, or nil to use the repository's handle.
func (r *ConversationRepository) Touch(ctx context.Context, tx *gorm.DB, id int64) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).
		Model(&model.Conversation{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", time.Now()).Error
}
