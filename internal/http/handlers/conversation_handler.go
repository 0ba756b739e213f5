package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dkruglov/freemarket-backend/internal/http/handlers/common"
	"github.com/dkruglov/freemarket-backend/internal/http/response"
	"github.com/dkruglov/freemarket-backend/internal/service"
)

type ConversationHandler struct {
	messaging *service.MessagingService
}

// NewConversationHandler создаёт новый хэндлер.
func NewConversationHandler(messaging *service.MessagingService) *ConversationHandler {
	return &ConversationHandler{messaging: messaging}
}

type createConversationRequest struct {
	ParticipantIDs []uuid.UUID `json:"participant_ids" binding:"required"`
	ProjectID      *uuid.UUID  `json:"project_id"`
	EngagementID   *uuid.UUID  `json:"engagement_id"`
}

// CreateConversation обрабатывает POST /conversations.
func (h *ConversationHandler) CreateConversation(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	var req createConversationRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	conv, err := h.messaging.CreateConversation(c.Request.Context(), actor, service.CreateConversationInput{
		ParticipantIDs: req.ParticipantIDs,
		ProjectID:      req.ProjectID,
		EngagementID:   req.EngagementID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, conv)
}

// GetConversation обрабатывает GET /conversations/:id.
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	conv, err := h.messaging.GetConversation(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, conv)
}

// ListMyConversations обрабатывает GET /conversations.
func (h *ConversationHandler) ListMyConversations(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	conversations, err := h.messaging.ListMyConversations(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, conversations)
}

type sendMessageRequest struct {
	MessageText   string  `json:"message_text"`
	AttachmentURL *string `json:"attachment_url"`
}

// SendMessage обрабатывает POST /conversations/:id/messages.
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var req sendMessageRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	msg, err := h.messaging.SendMessage(c.Request.Context(), actor, id, req.MessageText, req.AttachmentURL)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, msg)
}

// ListMessages обрабатывает GET /conversations/:id/messages.
// Клиент опрашивает этот эндпоинт для получения новых сообщений.
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	messages, err := h.messaging.ListMessages(c.Request.Context(), actor, id, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, messages)
}
