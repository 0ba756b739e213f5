package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkruglov/freemarket-backend/internal/models"
	"github.com/dkruglov/freemarket-backend/internal/pkg/apperror"
	"github.com/dkruglov/freemarket-backend/internal/repository"
)

// ProjectRepo описывает зависимости ProjectService от слоя хранилища.
type ProjectRepo interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, filter repository.ProjectFilter) ([]models.Project, int, error)
	Update(ctx context.Context, project *models.Project) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// ProjectService реализует размещение и ведение проектов.
type ProjectService struct {
	repo ProjectRepo
}

func NewProjectService(repo ProjectRepo) *ProjectService {
	return &ProjectService{repo: repo}
}

// CreateProjectInput содержит данные нового проекта.
type CreateProjectInput struct {
	Title       string
	Description string
	Category    *string
	BudgetMin   *float64
	BudgetMax   *float64
	DeadlineAt  *time.Time
	Milestones  []models.MilestoneInput
}

// CreateProject размещает проект с опциональным шаблоном этапов.
func (s *ProjectService) CreateProject(ctx context.Context, actor models.Actor, in CreateProjectInput) (*models.Project, error) {
	if actor.Role != models.RoleBusiness {
		return nil, apperror.ErrForbidden
	}

	details := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		details["title"] = "название проекта обязательно"
	}
	if strings.TrimSpace(in.Description) == "" {
		details["description"] = "описание проекта обязательно"
	}
	if in.BudgetMin != nil && in.BudgetMax != nil && *in.BudgetMin > *in.BudgetMax {
		details["budget_min"] = "минимальный бюджет больше максимального"
	}

	seen := map[int]struct{}{}
	for _, m := range in.Milestones {
		if strings.TrimSpace(m.Title) == "" {
			details["milestones"] = "название этапа обязательно"
		}
		if m.Amount < 0 {
			details["milestones"] = "сумма этапа не может быть отрицательной"
		}
		if _, dup := seen[m.SequenceOrder]; dup {
			details["milestones"] = "порядковые номера этапов должны быть уникальны"
		}
		seen[m.SequenceOrder] = struct{}{}
	}
	if len(details) > 0 {
		return nil, apperror.Validation("некорректные данные проекта", details)
	}

	project := &models.Project{
		BusinessID:  actor.UserID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    trimPtr(in.Category),
		BudgetMin:   in.BudgetMin,
		BudgetMax:   in.BudgetMax,
		Status:      models.ProjectStatusOpen,
		DeadlineAt:  in.DeadlineAt,
	}
	for _, m := range in.Milestones {
		project.Milestones = append(project.Milestones, models.ProjectMilestone{
			Title:         strings.TrimSpace(m.Title),
			Description:   trimPtr(m.Description),
			Amount:        m.Amount,
			SequenceOrder: m.SequenceOrder,
		})
	}

	if err := s.repo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// GetProject возвращает проект с шаблонами этапов.
func (s *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

// ListProjects возвращает проекты по фильтру.
func (s *ProjectService) ListProjects(ctx context.Context, filter repository.ProjectFilter) ([]models.Project, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Status != "" && filter.Status != models.ProjectStatusOpen && filter.Status != models.ProjectStatusClosed {
		return nil, 0, apperror.Validation("некорректный фильтр", map[string]string{"status": "неизвестный статус"})
	}
	return s.repo.List(ctx, filter)
}

// ListMyProjects возвращает проекты компании.
func (s *ProjectService) ListMyProjects(ctx context.Context, actor models.Actor, limit, offset int) ([]models.Project, int, error) {
	filter := repository.ProjectFilter{
		BusinessID: &actor.UserID,
		Limit:      limit,
		Offset:     offset,
	}
	return s.ListProjects(ctx, filter)
}

// UpdateProject редактирует проект. Доступно только владельцу.
func (s *ProjectService) UpdateProject(ctx context.Context, actor models.Actor, id uuid.UUID, in CreateProjectInput) (*models.Project, error) {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.BusinessID != actor.UserID {
		return nil, apperror.ErrForbidden
	}

	details := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		details["title"] = "название проекта обязательно"
	}
	if strings.TrimSpace(in.Description) == "" {
		details["description"] = "описание проекта обязательно"
	}
	if len(details) > 0 {
		return nil, apperror.Validation("некорректные данные проекта", details)
	}

	project.Title = strings.TrimSpace(in.Title)
	project.Description = strings.TrimSpace(in.Description)
	project.Category = trimPtr(in.Category)
	project.BudgetMin = in.BudgetMin
	project.BudgetMax = in.BudgetMax
	project.DeadlineAt = in.DeadlineAt

	if err := s.repo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// CloseProject закрывает проект для новых ставок.
func (s *ProjectService) CloseProject(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if project.BusinessID != actor.UserID {
		return apperror.ErrForbidden
	}
	return s.repo.UpdateStatus(ctx, id, models.ProjectStatusClosed)
}
