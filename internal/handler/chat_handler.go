package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"mindweaver-server/internal/logger"
	"mindweaver-server/internal/middleware"
	"mindweaver-server/internal/service"
	"mindweaver-server/pkg/response"
)

// ChatHandler handles story generation and chat history.
type ChatHandler struct {
	chatService *service.ChatService
	log         *logger.Logger
}

// NewChatHandler creates a ChatHandler.
func NewChatHandler(chatService *service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		log:         log.With("handler", "chat"),
	}
}

// GenerateStory answers the person's text with a story.
// @Summary Generate a story
// @Tags chat
// @Accept json
// @Produce json
// @Param body body service.GenerateStoryRequest true "user input"
// @Success 200 {object} service.StoryResult
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /generate-story [post]
func (h *ChatHandler) GenerateStory(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	if ident == nil {
		response.Unauthorized(c, msgAuthRequired)
		return
	}

	var req service.GenerateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, msgNoInput)
		return
	}

	result, err := h.chatService.SubmitUtterance(c.Request.Context(), ident, req.UserInput, req.ChatID)
	if err != nil {
		writeError(c, h.log, err, msgGenerateFailed)
		return
	}
	response.Success(c, result)
}

// ListChats returns the person's recent conversations.
// @Summary List chats
// @Tags chat
// @Produce json
// @Success 200 {array} service.ConversationResponse
// @Router /chats [get]
func (h *ChatHandler) ListChats(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	if ident == nil {
		response.Unauthorized(c, msgAuthRequired)
		return
	}

	chats, err := h.chatService.ListConversations(c.Request.Context(), ident)
	if err != nil {
		writeError(c, h.log, err, "Failed to fetch chats")
		return
	}
	response.Success(c, chats)
}

// GetMessages returns the messages of one conversation.
// @Summary Chat messages
// @Tags chat
// @Produce json
// @Param id path int true "chat id"
// @Success 200 {array} service.MessageResponse
// @Failure 404 {object} response.ErrorBody
// @Router /chats/{id}/messages [get]
func (h *ChatHandler) GetMessages(c *gin.Context) {
	ident := middleware.GetIdentity(c)
	if ident == nil {
		response.Unauthorized(c, msgAuthRequired)
		return
	}

	chatID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || chatID <= 0 {
		response.NotFound(c, msgChatNotFound)
		return
	}

	messages, err := h.chatService.ListMessages(c.Request.Context(), ident, chatID)
	if err != nil {
		writeError(c, h.log, err, "Failed to fetch messages")
		return
	}
	response.Success(c, messages)
}
