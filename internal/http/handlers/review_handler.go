package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dkruglov/freemarket-backend/internal/http/handlers/common"
	"github.com/dkruglov/freemarket-backend/internal/http/response"
	"github.com/dkruglov/freemarket-backend/internal/service"
)

type ReviewHandler struct {
	reviews *service.ReviewService
}

// NewReviewHandler создаёт новый хэндлер.
func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type createReviewRequest struct {
	RatingOverall       int     `json:"rating_overall" binding:"required"`
	RatingQuality       int     `json:"rating_quality" binding:"required"`
	RatingCommunication int     `json:"rating_communication" binding:"required"`
	RatingTimeliness    int     `json:"rating_timeliness" binding:"required"`
	Comment             *string `json:"comment"`
}

// CreateReview обрабатывает POST /engagements/:id/reviews.
func (h *ReviewHandler) CreateReview(c *gin.Context) {
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

	var req createReviewRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	review, err := h.reviews.CreateReview(c.Request.Context(), actor, engagementID, service.CreateReviewInput{
		RatingOverall:       req.RatingOverall,
		RatingQuality:       req.RatingQuality,
		RatingCommunication: req.RatingCommunication,
		RatingTimeliness:    req.RatingTimeliness,
		Comment:             req.Comment,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, review)
}

// CanReview обрабатывает GET /engagements/:id/reviews/can-review.
func (h *ReviewHandler) CanReview(c *gin.Context) {
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

	engagement, err := h.reviews.CanReviewEngagement(c.Request.Context(), engagementID, actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"can_review": engagement != nil})
}

// ListEngagementReviews обрабатывает GET /engagements/:id/reviews.
func (h *ReviewHandler) ListEngagementReviews(c *gin.Context) {
	engagementID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	reviews, err := h.reviews.ListEngagementReviews(c.Request.Context(), engagementID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reviews)
}

// ListUserReviews обрабатывает GET /users/:id/reviews.
func (h *ReviewHandler) ListUserReviews(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	reviews, err := h.reviews.ListUserReviews(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, reviews)
}
