package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dkruglov/freemarket-backend/internal/http/handlers/common"
	"github.com/dkruglov/freemarket-backend/internal/http/response"
	"github.com/dkruglov/freemarket-backend/internal/service"
)

type DisputeHandler struct {
	disputes *service.DisputeService
}

// NewDisputeHandler создаёт новый хэндлер.
func NewDisputeHandler(disputes *service.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputes: disputes}
}

type createDisputeRequest struct {
	ReasonCode  string `json:"reason_code" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// CreateDispute обрабатывает POST /engagements/:id/disputes.
func (h *DisputeHandler) CreateDispute(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	engagementID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var req createDisputeRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dispute, err := h.disputes.CreateDispute(c.Request.Context(), actor, engagementID, req.ReasonCode, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dispute)
}

// GetDispute обрабатывает GET /disputes/:id.
func (h *DisputeHandler) GetDispute(c *gin.Context) {
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

	dispute, err := h.disputes.GetDispute(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dispute)
}

// ListEngagementDisputes обрабатывает GET /engagements/:id/disputes.
func (h *DisputeHandler) ListEngagementDisputes(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	engagementID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	disputes, err := h.disputes.ListEngagementDisputes(c.Request.Context(), actor, engagementID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, disputes)
}

// ListOpenDisputes обрабатывает GET /admin/disputes.
func (h *DisputeHandler) ListOpenDisputes(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	disputes, err := h.disputes.ListOpenDisputes(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, disputes)
}

type resolveDisputeRequest struct {
	Status          string  `json:"status" binding:"required"`
	ResolutionNotes *string `json:"resolution_notes"`
}

// ResolveDispute обрабатывает POST /admin/disputes/:id/resolve.
func (h *DisputeHandler) ResolveDispute(c *gin.Context) {
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

	var req resolveDisputeRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dispute, err := h.disputes.ResolveDispute(c.Request.Context(), actor, id, req.Status, req.ResolutionNotes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dispute)
}

type disputeAttachmentRequest struct {
	FileURL     string  `json:"file_url" binding:"required"`
	Description *string `json:"description"`
}

// AddAttachment обрабатывает POST /disputes/:id/attachments.
func (h *DisputeHandler) AddAttachment(c *gin.Context) {
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

	var req disputeAttachmentRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	attachment, err := h.disputes.AddAttachment(c.Request.Context(), actor, id, req.FileURL, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, attachment)
}
