package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dkruglov/freemarket-backend/internal/http/handlers/common"
	"github.com/dkruglov/freemarket-backend/internal/http/response"
	"github.com/dkruglov/freemarket-backend/internal/models"
	"github.com/dkruglov/freemarket-backend/internal/repository"
	"github.com/dkruglov/freemarket-backend/internal/service"
)

type ProjectHandler struct {
	projects *service.ProjectService
}

// NewProjectHandler создаёт новый хэндлер.
func NewProjectHandler(projects *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type milestoneInputRequest struct {
	Title         string     `json:"title" binding:"required"`
	Description   *string    `json:"description"`
	Amount        float64    `json:"amount"`
	DueDate       *time.Time `json:"due_date"`
	SequenceOrder int        `json:"sequence_order"`
}

type projectRequest struct {
	Title       string                  `json:"title" binding:"required"`
	Description string                  `json:"description" binding:"required"`
	Category    *string                 `json:"category"`
	BudgetMin   *float64                `json:"budget_min"`
	BudgetMax   *float64                `json:"budget_max"`
	DeadlineAt  *time.Time              `json:"deadline_at"`
	Milestones  []milestoneInputRequest `json:"milestones"`
}

func (r projectRequest) toInput() service.CreateProjectInput {
	in := service.CreateProjectInput{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		BudgetMin:   r.BudgetMin,
		BudgetMax:   r.BudgetMax,
		DeadlineAt:  r.DeadlineAt,
	}
	for _, m := range r.Milestones {
		in.Milestones = append(in.Milestones, models.MilestoneInput{
			Title:         m.Title,
			Description:   m.Description,
			Amount:        m.Amount,
			DueDate:       m.DueDate,
			SequenceOrder: m.SequenceOrder,
		})
	}
	return in
}

// CreateProject обрабатывает POST /projects.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	var req projectRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projects.CreateProject(c.Request.Context(), actor, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// GetProject обрабатывает GET /projects/:id.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projects.GetProject(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// ListProjects обрабатывает GET /projects.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	filter := repository.ProjectFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Limit:    limit,
		Offset:   offset,
	}

	projects, total, err := h.projects.ListProjects(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, projects, total, limit, offset)
}

// ListMyProjects обрабатывает GET /businesses/me/projects.
func (h *ProjectHandler) ListMyProjects(c *gin.Context) {
	actor, err := common.CurrentActor(c)
	if err != nil {
		response.Unauthorized(c, err.Error())
		return
	}

	limit, offset := common.GetPagination(c)
	projects, total, err := h.projects.ListMyProjects(c.Request.Context(), actor, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, projects, total, limit, offset)
}

// UpdateProject обрабатывает PUT /projects/:id.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
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

	var req projectRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projects.UpdateProject(c.Request.Context(), actor, id, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// CloseProject обрабатывает POST /projects/:id/close.
func (h *ProjectHandler) CloseProject(c *gin.Context) {
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

	if err := h.projects.CloseProject(c.Request.Context(), actor, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"status": models.ProjectStatusClosed})
}
