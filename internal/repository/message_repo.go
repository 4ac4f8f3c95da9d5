package repository

import (
	"context"

	"gorm.io/gorm"

	"mindweaver-server/internal/database"
	"mindweaver-server/internal/model"
)

// MessageRepository handles message rows.
type MessageRepository struct {
	db            *gorm.DB
	conversations *ConversationRepository
}

// NewMessageRepository creates a MessageRepository.
// Parameters:
//   - db: GORM handle
//   - conversations: used to bump the parent conversation on append
func NewMessageRepository(db *gorm.DB, conversations *ConversationRepository) *MessageRepository {
	return &MessageRepository{db: db, conversations: conversations}
}

// Append inserts a message and bumps the parent conversation's updated_at.
// Both writes commit together or not at all.
// Parameters:
//   - ctx: request context
//   - message: ConversationID, Role and Content must be set; ID and CreatedAt are filled in
//
// Returns:
//   - error: model.ErrInvalidMessage for a bad role or empty user text, otherwise database error
func (r *MessageRepository) Append(ctx context.Context, message *model.Message) error {
	return database.Transaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return r.conversations.Touch(ctx, tx, message.ConversationID)
	})
}

// ListByConversation returns the messages of a conversation in chronological order.
// Parameters:
//   - ctx: request context
//   - conversationID: parent conversation
//
// Returns:
//   - []model.Message: oldest first, never nil
//   - error: database error
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID int64) ([]model.Message, error) {
	messages := make([]model.Message, 0)
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	return messages, err
}

// CountByConversation returns the number of messages in a conversation.
func (r *MessageRepository) CountByConversation(ctx context.Context, conversationID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).Where("conversation_id = ?", conversationID).Count(&count).Error
	return count, err
}
