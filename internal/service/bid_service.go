package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/dkruglov/freemarket-backend/internal/models"
	"github.com/dkruglov/freemarket-backend/internal/pkg/apperror"
	"github.com/dkruglov/freemarket-backend/internal/repository"
)

// BidRepo описывает зависимости BidService от слоя хранилища.
type BidRepo interface {
	Create(ctx context.Context, bid *models.Bid) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error)
	ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Bid, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Withdraw(ctx context.Context, id uuid.UUID) error
}

// ProjectRepoForBid описывает операции с проектами, нужные при работе со ставками.
type ProjectRepoForBid interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
}

// BidService реализует подачу и модерацию ставок.
type BidService struct {
	repo     BidRepo
	projects ProjectRepoForBid
	notifier Notifier
}

func NewBidService(repo BidRepo, projects ProjectRepoForBid, notifier Notifier) *BidService {
	return &BidService{repo: repo, projects: projects, notifier: notifier}
}

// CreateBidInput содержит данные новой ставки.
type CreateBidInput struct {
	ProjectID            uuid.UUID
	BidAmount            float64
	BidType              string
	ProposedTimelineDays int
	CoverLetter          *string
}

// CreateBid подаёт ставку фрилансера на открытый проект.
func (s *BidService) CreateBid(ctx context.Context, actor models.Actor, in CreateBidInput) (*models.Bid, error) {
	if actor.Role != models.RoleFreelancer {
		return nil, apperror.ErrForbidden
	}

	details := map[string]string{}
	if in.BidAmount <= 0 {
		details["bid_amount"] = "сумма ставки должна быть положительной"
	}
	if in.BidType != models.BidTypeFixed && in.BidType != models.BidTypeHourly {
		details["bid_type"] = "тип ставки должен быть FIXED или HOURLY"
	}
	if in.ProposedTimelineDays <= 0 {
		details["proposed_timeline_days"] = "срок должен быть положительным"
	}
	if len(details) > 0 {
		return nil, apperror.Validation("некорректные данные ставки", details)
	}

	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, err
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "проект закрыт для ставок")
	}
	if project.BusinessID == actor.UserID {
		return nil, apperror.ErrForbidden
	}

	bid := &models.Bid{
		ProjectID:            in.ProjectID,
		FreelancerID:         actor.UserID,
		BidAmount:            in.BidAmount,
		BidType:              in.BidType,
		ProposedTimelineDays: in.ProposedTimelineDays,
		CoverLetter:          trimPtr(in.CoverLetter),
		Status:               models.BidStatusSubmitted,
	}

	if err := s.repo.Create(ctx, bid); err != nil {
		if errors.Is(err, repository.ErrBidExists) {
			return nil, apperror.New(apperror.ErrCodeConflict, "ставка на этот проект уже подана")
		}
		return nil, err
	}

	s.notifier.Notify(project.BusinessID, "bid.created", map[string]interface{}{
		"bid_id":     bid.ID.String(),
		"project_id": project.ID.String(),
	})

	return bid, nil
}

// GetBid возвращает ставку. Видна её автору и владельцу проекта.
func (s *BidService) GetBid(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Bid, error) {
	bid, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return nil, apperror.ErrBidNotFound
		}
		return nil, err
	}

	if bid.FreelancerID == actor.UserID || actor.IsAdmin {
		return bid, nil
	}

	project, err := s.projects.GetByID(ctx, bid.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.BusinessID != actor.UserID {
		return nil, apperror.ErrForbidden
	}
	return bid, nil
}

// ListProjectBids возвращает ставки по проекту. Доступно владельцу проекта.
func (s *BidService) ListProjectBids(ctx context.Context, actor models.Actor, projectID uuid.UUID) ([]models.Bid, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, apperror.ErrProjectNotFound
		}
		return nil, err
	}
	if project.BusinessID != actor.UserID && !actor.IsAdmin {
		return nil, apperror.ErrForbidden
	}
	return s.repo.ListByProject(ctx, projectID)
}

// ListMyBids возвращает ставки фрилансера.
func (s *BidService) ListMyBids(ctx context.Context, actor models.Actor) ([]models.Bid, error) {
	return s.repo.ListByFreelancer(ctx, actor.UserID)
}

// UpdateBidStatus переводит ставку в SHORTLISTED или REJECTED.
// Принятие ставки идёт отдельным путём через создание сотрудничества.
func (s *BidService) UpdateBidStatus(ctx context.Context, actor models.Actor, id uuid.UUID, newStatus string) (*models.Bid, error) {
	if newStatus != models.BidStatusShortlisted && newStatus != models.BidStatusRejected {
		return nil, apperror.Validation("некорректный статус", map[string]string{
			"status": "допустимы только SHORTLISTED и REJECTED",
		})
	}

	bid, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return nil, apperror.ErrBidNotFound
		}
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, bid.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.BusinessID != actor.UserID {
		return nil, apperror.ErrForbidden
	}

	if bid.Status == models.BidStatusAccepted {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "принятую ставку нельзя изменить")
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, err
	}
	bid.Status = newStatus

	s.notifier.Notify(bid.FreelancerID, "bid.status_changed", map[string]interface{}{
		"bid_id": id.String(),
		"status": newStatus,
	})

	return bid, nil
}

// WithdrawBid отзывает ставку. Доступно автору, пока ставка не принята.
func (s *BidService) WithdrawBid(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	bid, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return apperror.ErrBidNotFound
		}
		return err
	}
	if bid.FreelancerID != actor.UserID {
		return apperror.ErrForbidden
	}
	if bid.Status == models.BidStatusAccepted {
		return apperror.New(apperror.ErrCodeBadRequest, "принятую ставку нельзя отозвать")
	}

	if err := s.repo.Withdraw(ctx, id); err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return apperror.ErrBidNotFound
		}
		return err
	}
	return nil
}

// trimPtr нормализует опциональный текст: пустые строки превращаются в nil.
func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
