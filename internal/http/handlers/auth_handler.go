package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/dkruglov/freemarket-backend/internal/http/handlers/common"
	"github.com/dkruglov/freemarket-backend/internal/http/response"
	"github.com/dkruglov/freemarket-backend/internal/models"
	"github.com/dkruglov/freemarket-backend/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler создаёт новый хэндлер.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Register обрабатывает POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.auth.Register(c.Request.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Login обрабатывает POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.auth.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Refresh обрабатывает POST /auth/refresh.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, pair)
}

// Me обрабатывает GET /users/me.
func (h *AuthHandler) Me(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	user, err := h.auth.GetUser(c.Request.Context(), actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user)
}

type businessProfileRequest struct {
	CompanyName string  `json:"company_name" binding:"required"`
	Description *string `json:"description"`
	Website     *string `json:"website"`
	Location    *string `json:"location"`
}

// GetBusinessProfile обрабатывает GET /businesses/:id/profile.
func (h *AuthHandler) GetBusinessProfile(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.auth.GetBusinessProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

// UpdateBusinessProfile обрабатывает PUT /businesses/me/profile.
func (h *AuthHandler) UpdateBusinessProfile(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	var req businessProfileRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile := &models.BusinessProfile{
		UserID:      actor.UserID,
		CompanyName: req.CompanyName,
		Description: req.Description,
		Website:     req.Website,
		Location:    req.Location,
	}
	if err := h.auth.UpdateBusinessProfile(c.Request.Context(), actor, profile); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

type freelancerProfileRequest struct {
	DisplayName string   `json:"display_name" binding:"required"`
	Headline    *string  `json:"headline"`
	Bio         *string  `json:"bio"`
	HourlyRate  *float64 `json:"hourly_rate"`
	Location    *string  `json:"location"`
}

// GetFreelancerProfile обрабатывает GET /freelancers/:id/profile.
func (h *AuthHandler) GetFreelancerProfile(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile, err := h.auth.GetFreelancerProfile(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}

// UpdateFreelancerProfile обрабатывает PUT /freelancers/me/profile.
func (h *AuthHandler) UpdateFreelancerProfile(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	var req freelancerProfileRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	profile := &models.FreelancerProfile{
		UserID:      actor.UserID,
		DisplayName: req.DisplayName,
		Headline:    req.Headline,
		Bio:         req.Bio,
		HourlyRate:  req.HourlyRate,
		Location:    req.Location,
	}
	if err := h.auth.UpdateFreelancerProfile(c.Request.Context(), actor, profile); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile)
}
