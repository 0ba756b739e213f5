package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dkruglov/freemarket-backend/internal/http/handlers/common"
	"github.com/dkruglov/freemarket-backend/internal/http/response"
	"github.com/dkruglov/freemarket-backend/internal/service"
)

type BidHandler struct {
	bids        *service.BidService
	engagements *service.EngagementService
}

// NewBidHandler создаёт новый хэндлер.
func NewBidHandler(bids *service.BidService, engagements *service.EngagementService) *BidHandler {
	return &BidHandler{bids: bids, engagements: engagements}
}

type createBidRequest struct {
	ProjectID            uuid.UUID `json:"project_id" binding:"required"`
	BidAmount            float64   `json:"bid_amount" binding:"required"`
	BidType              string    `json:"bid_type" binding:"required"`
	ProposedTimelineDays int       `json:"proposed_timeline_days" binding:"required"`
	CoverLetter          *string   `json:"cover_letter"`
}

// CreateBid обрабатывает POST /bids.
func (h *BidHandler) CreateBid(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	var req createBidRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bid, err := h.bids.CreateBid(c.Request.Context(), actor, service.CreateBidInput{
		ProjectID:            req.ProjectID,
		BidAmount:            req.BidAmount,
		BidType:              req.BidType,
		ProposedTimelineDays: req.ProposedTimelineDays,
		CoverLetter:          req.CoverLetter,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, bid)
}

// GetBid обрабатывает GET /bids/:id.
func (h *BidHandler) GetBid(c *gin.Context) {
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

	bid, err := h.bids.GetBid(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, bid)
}

// ListProjectBids обрабатывает GET /projects/:id/bids.
func (h *BidHandler) ListProjectBids(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	projectID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bids, err := h.bids.ListProjectBids(c.Request.Context(), actor, projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, bids)
}

// ListMyBids обрабатывает GET /freelancers/me/bids.
func (h *BidHandler) ListMyBids(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	bids, err := h.bids.ListMyBids(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, bids)
}

type bidStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateBidStatus обрабатывает POST /bids/:id/status.
func (h *BidHandler) UpdateBidStatus(c *gin.Context) {
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

	var req bidStatusRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bid, err := h.bids.UpdateBidStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, bid)
}

// WithdrawBid обрабатывает DELETE /bids/:id.
func (h *BidHandler) WithdrawBid(c *gin.Context) {
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

	if err := h.bids.WithdrawBid(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"withdrawn": true})
}

// AcceptBid обрабатывает POST /bids/:id/accept.
// Первый успешный вызов отвечает 201, повторные и проигравшие гонку 200
// с тем же сотрудничеством.
func (h *BidHandler) AcceptBid(c *gin.Context) {
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

	engagement, created, err := h.engagements.CreateEngagementFromBid(c.Request.Context(), id, actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{"engagement": engagement, "created": created}
	if created {
		response.Created(c, payload)
		return
	}
	response.Success(c, payload)
}
