package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mindweaver-server/internal/generator"
	"mindweaver-server/internal/logger"
	"mindweaver-server/internal/model"
	"mindweaver-server/internal/repository"
	"mindweaver-server/internal/session"
	"mindweaver-server/pkg/util"
)

// DefaultListLimit caps GET /chats when no limit is configured.
const DefaultListLimit = 10

// ChatService runs the conversation flow: store what the person wrote,
// ask the model for a story, store the story.
type ChatService struct {
	conversationRepo *repository.ConversationRepository // conversations
	messageRepo      *repository.MessageRepository      // messages
	generator        generator.Generator                // story model
	listLimit        int                                // max conversations returned by ListConversations
	log              *logger.Logger
}

// NewChatService creates a ChatService.
// Parameters:
//   - listLimit: <= 0 uses DefaultListLimit
func NewChatService(
	conversationRepo *repository.ConversationRepository,
	messageRepo *repository.MessageRepository,
	gen generator.Generator,
	listLimit int,
	log *logger.Logger,
) *ChatService {
	if listLimit <= 0 {
		listLimit = DefaultListLimit
	}
	return &ChatService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		generator:        gen,
		listLimit:        listLimit,
		log:              log.With("service", "ChatService"),
	}
}

// GenerateStoryRequest is the body of POST /generate-story.
type GenerateStoryRequest struct {
	UserInput string `json:"user_input"`        // what the person wrote
	ChatID    *int64 `json:"chat_id,omitempty"` // continue this conversation; absent or null starts a new one
}

// StoryResult is the body returned by POST /generate-story.
type StoryResult struct {
	Story  string `json:"story"`
	ChatID int64  `json:"chat_id"`
}

// ConversationResponse is one entry of GET /chats.
type ConversationResponse struct {
	ID        int64   `json:"id"`
	Title     *string `json:"title"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// MessageResponse is one entry of GET /chats/:id/messages.
type MessageResponse struct {
	ID        int64  `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// SubmitUtterance stores the person's text, generates a story and stores it.
// Steps:
//  1. reject blank text
//  2. create a conversation (titled from the text) or load and check the given one
//  3. append the user message
//  4. generate the story synchronously
//  5. append the assistant message
//
// If generation fails, the conversation and the user message stay stored
// and no assistant message is written.
// Parameters:
//   - ctx: request context
//   - ident: signed-in identity
//   - text: what the person wrote
//   - conversationID: nil to start a new conversation
//
// Returns:
//   - *StoryResult: story and conversation id
//   - error: ErrInvalidInput, ErrNotFound, ErrForbidden, ErrGeneration or ErrPersistence
func (s *ChatService) SubmitUtterance(ctx context.Context, ident *session.Identity, text string, conversationID *int64) (*StoryResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: no input provided", ErrInvalidInput)
	}

	var conversation *model.Conversation
	if conversationID == nil || *conversationID == 0 {
		title := util.TruncateTitle(text, util.TitleMaxRunes)
		conversation = &model.Conversation{
			AccountID: ident.AccountID,
			Title:     &title,
		}
		if err := s.conversationRepo.Create(ctx, conversation); err != nil {
			return nil, fmt.Errorf("%w: create conversation: %v", ErrPersistence, err)
		}
	} else {
		var err error
		conversation, err = s.ownedConversation(ctx, ident, *conversationID)
		if err != nil {
			return nil, err
		}
	}

	if err := s.messageRepo.Append(ctx, &model.Message{
		ConversationID: conversation.ID,
		Role:           model.MessageRoleUser,
		Content:        text,
	}); err != nil {
		return nil, fmt.Errorf("%w: append user message: %v", ErrPersistence, err)
	}

	started := time.Now()
	story, err := s.generator.Generate(ctx, generator.BuildStoryPrompt(text))
	if err != nil {
		s.log.Error("story generation failed", "chat_id", conversation.ID, "elapsed", time.Since(started), "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	story = strings.TrimSpace(story)
	if story == "" {
		s.log.Error("story generation returned nothing", "chat_id", conversation.ID)
		return nil, fmt.Errorf("%w: empty story", ErrGeneration)
	}

	if err := s.messageRepo.Append(ctx, &model.Message{
		ConversationID: conversation.ID,
		Role:           model.MessageRoleAssistant,
		Content:        story,
	}); err != nil {
		return nil, fmt.Errorf("%w: append assistant message: %v", ErrPersistence, err)
	}

	s.log.Info("story generated", "chat_id", conversation.ID, "account_id", ident.AccountID, "elapsed", time.Since(started))
	return &StoryResult{Story: story, ChatID: conversation.ID}, nil
}

// ListConversations returns the account's most recently active conversations.
// Returns:
//   - []ConversationResponse: newest activity first, at most listLimit entries
//   - error: ErrPersistence
func (s *ChatService) ListConversations(ctx context.Context, ident *session.Identity) ([]ConversationResponse, error) {
	conversations, err := s.conversationRepo.ListByAccount(ctx, ident.AccountID, s.listLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: list conversations: %v", ErrPersistence, err)
	}

	result := make([]ConversationResponse, len(conversations))
	for i, c := range conversations {
		result[i] = ConversationResponse{
			ID:        c.ID,
			Title:     c.Title,
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
			UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
		}
	}
	return result, nil
}

// ListMessages returns a conversation's messages, oldest first.
// Returns:
//   - []MessageResponse: chronological
//   - error: ErrNotFound, ErrForbidden or ErrPersistence
func (s *ChatService) ListMessages(ctx context.Context, ident *session.Identity, conversationID int64) ([]MessageResponse, error) {
	conversation, err := s.ownedConversation(ctx, ident, conversationID)
	if err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByConversation(ctx, conversation.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: list messages: %v", ErrPersistence, err)
	}

	result := make([]MessageResponse, len(messages))
	for i, m := range messages {
		result[i] = MessageResponse{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt.Format(time.RFC3339),
		}
	}
	return result, nil
}

// ownedConversation loads a conversation and checks it belongs to ident.
func (s *ChatService) ownedConversation(ctx context.Context, ident *session.Identity, id int64) (*model.Conversation, error) {
	conversation, err := s.conversationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: load conversation: %v", ErrPersistence, err)
	}
	if conversation == nil {
		return nil, ErrNotFound
	}
	if !conversation.OwnedBy(ident.AccountID) {
		s.log.Warn("conversation accessed by another account", "chat_id", id, "account_id", ident.AccountID)
		return nil, ErrForbidden
	}
	return conversation, nil
}
