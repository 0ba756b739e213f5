package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dkruglov/freemarket-backend/internal/http/handlers/common"
	"github.com/dkruglov/freemarket-backend/internal/http/response"
	"github.com/dkruglov/freemarket-backend/internal/models"
	"github.com/dkruglov/freemarket-backend/internal/service"
)

type EngagementHandler struct {
	engagements *service.EngagementService
}

// NewEngagementHandler создаёт новый хэндлер.
func NewEngagementHandler(engagements *service.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagements: engagements}
}

// GetEngagement обрабатывает GET /engagements/:id.
func (h *EngagementHandler) GetEngagement(c *gin.Context) {
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

	engagement, err := h.engagements.GetEngagement(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, engagement)
}

// ListMyEngagements обрабатывает GET /businesses/me/engagements
// и GET /freelancers/me/engagements.
func (h *EngagementHandler) ListMyEngagements(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	summaries, err := h.engagements.ListMyEngagements(c.Request.Context(), actor, c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, summaries)
}

// StartEngagement обрабатывает POST /engagements/:id/start.
func (h *EngagementHandler) StartEngagement(c *gin.Context) {
	h.updateStatus(c, models.EngagementStatusActive)
}

// CompleteEngagement обрабатывает POST /engagements/:id/complete.
func (h *EngagementHandler) CompleteEngagement(c *gin.Context) {
	h.updateStatus(c, models.EngagementStatusCompleted)
}

// CancelEngagement обрабатывает POST /engagements/:id/cancel.
func (h *EngagementHandler) CancelEngagement(c *gin.Context) {
	h.updateStatus(c, models.EngagementStatusCancelled)
}

func (h *EngagementHandler) updateStatus(c *gin.Context, newStatus string) {
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

	engagement, err := h.engagements.UpdateEngagementStatus(c.Request.Context(), actor, id, newStatus)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, engagement)
}

type appendMilestonesRequest struct {
	Milestones []milestoneInputRequest `json:"milestones" binding:"required"`
}

// AppendMilestones обрабатывает POST /engagements/:id/milestones.
func (h *EngagementHandler) AppendMilestones(c *gin.Context) {
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

	var req appendMilestonesRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	inputs := make([]models.MilestoneInput, 0, len(req.Milestones))
	for _, m := range req.Milestones {
		inputs = append(inputs, models.MilestoneInput{
			Title:         m.Title,
			Description:   m.Description,
			Amount:        m.Amount,
			DueDate:       m.DueDate,
			SequenceOrder: m.SequenceOrder,
		})
	}

	milestones, err := h.engagements.AppendMilestones(c.Request.Context(), actor, id, inputs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, milestones)
}

// StartMilestone обрабатывает POST /milestones/:id/start.
func (h *EngagementHandler) StartMilestone(c *gin.Context) {
	h.setMilestoneStatus(c, models.MilestoneStatusInProgress)
}

// SubmitMilestone обрабатывает POST /milestones/:id/submit.
func (h *EngagementHandler) SubmitMilestone(c *gin.Context) {
	h.setMilestoneStatus(c, models.MilestoneStatusSubmitted)
}

// ApproveMilestone обрабатывает POST /milestones/:id/approve.
func (h *EngagementHandler) ApproveMilestone(c *gin.Context) {
	h.setMilestoneStatus(c, models.MilestoneStatusApproved)
}

// RejectMilestone обрабатывает POST /milestones/:id/reject.
func (h *EngagementHandler) RejectMilestone(c *gin.Context) {
	h.setMilestoneStatus(c, models.MilestoneStatusRejected)
}

func (h *EngagementHandler) setMilestoneStatus(c *gin.Context, newStatus string) {
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

	milestone, err := h.engagements.SetMilestoneStatus(c.Request.Context(), actor, id, newStatus)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, milestone)
}

// UpdateMilestone обрабатывает PUT /milestones/:id.
func (h *EngagementHandler) UpdateMilestone(c *gin.Context) {
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

	var req milestoneInputRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	milestone, err := h.engagements.UpdateMilestone(c.Request.Context(), actor, id, models.MilestoneInput{
		Title:         req.Title,
		Description:   req.Description,
		Amount:        req.Amount,
		DueDate:       req.DueDate,
		SequenceOrder: req.SequenceOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, milestone)
}

type deliverableRequest struct {
	FileURL string  `json:"file_url" binding:"required"`
	Notes   *string `json:"notes"`
}

// AddDeliverable обрабатывает POST /milestones/:id/deliverables.
func (h *EngagementHandler) AddDeliverable(c *gin.Context) {
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

	var req deliverableRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	deliverable, err := h.engagements.AddDeliverable(c.Request.Context(), actor, id, req.FileURL, req.Notes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, deliverable)
}

// ListDeliverables обрабатывает GET /milestones/:id/deliverables.
func (h *EngagementHandler) ListDeliverables(c *gin.Context) {
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

	deliverables, err := h.engagements.ListDeliverables(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, deliverables)
}

type paymentStatusRequest struct {
	PaymentStatus string  `json:"payment_status" binding:"required"`
	PaymentNotes  *string `json:"payment_notes"`
}

// UpdatePaymentStatus обрабатывает POST /engagements/:id/payment-status.
func (h *EngagementHandler) UpdatePaymentStatus(c *gin.Context) {
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

	var req paymentStatusRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	engagement, err := h.engagements.UpdatePaymentStatus(c.Request.Context(), actor, id, req.PaymentStatus, req.PaymentNotes)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, engagement)
}

// GetPaymentStatus обрабатывает GET /engagements/:id/payment-status.
func (h *EngagementHandler) GetPaymentStatus(c *gin.Context) {
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

	engagement, err := h.engagements.GetEngagement(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"payment_status":                engagement.PaymentStatus,
		"payment_notes":                 engagement.PaymentNotes,
		"freelancer_marked_received":    engagement.FreelancerMarkedReceived,
		"freelancer_marked_received_at": engagement.FreelancerMarkedReceivedAt,
	})
}

// MarkReceived обрабатывает POST /engagements/:id/mark-received.
func (h *EngagementHandler) MarkReceived(c *gin.Context) {
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

	engagement, err := h.engagements.MarkFreelancerReceived(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, engagement)
}
