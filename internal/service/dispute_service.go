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

// DisputeRepo описывает зависимости DisputeService от слоя хранилища.
type DisputeRepo interface {
	Create(ctx context.Context, dispute *models.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	ListByEngagement(ctx context.Context, engagementID uuid.UUID) ([]models.Dispute, error)
	ListOpen(ctx context.Context) ([]models.Dispute, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, resolutionNotes *string) error
	AddAttachment(ctx context.Context, a *models.DisputeAttachment) error
}

// EngagementRepoForDispute описывает доступ к сотрудничествам при работе со спорами.
type EngagementRepoForDispute interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Engagement, error)
}

// DisputeService реализует споры: подача участниками, просмотр,
// разрешение администратором.
type DisputeService struct {
	repo        DisputeRepo
	engagements EngagementRepoForDispute
	notifier    Notifier
}

func NewDisputeService(repo DisputeRepo, engagements EngagementRepoForDispute, notifier Notifier) *DisputeService {
	return &DisputeService{repo: repo, engagements: engagements, notifier: notifier}
}

// CreateDispute поднимает спор по сотрудничеству. Ограничений по статусу
// сотрудничества нет, спор можно поднять на любой стадии.
func (s *DisputeService) CreateDispute(ctx context.Context, actor models.Actor, engagementID uuid.UUID, reasonCode, description string) (*models.Dispute, error) {
	engagement, err := s.getEngagement(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	if !engagement.IsParticipant(actor.UserID) {
		return nil, apperror.ErrForbidden
	}

	details := map[string]string{}
	if strings.TrimSpace(reasonCode) == "" {
		details["reason_code"] = "код причины обязателен"
	}
	if strings.TrimSpace(description) == "" {
		details["description"] = "описание обязательно"
	}
	if len(details) > 0 {
		return nil, apperror.Validation("некорректные данные спора", details)
	}

	dispute := &models.Dispute{
		EngagementID: engagementID,
		RaisedByID:   actor.UserID,
		ReasonCode:   strings.TrimSpace(reasonCode),
		Description:  strings.TrimSpace(description),
		Status:       models.DisputeStatusOpen,
	}
	if err := s.repo.Create(ctx, dispute); err != nil {
		return nil, err
	}

	other := engagement.FreelancerID
	if actor.UserID == engagement.FreelancerID {
		other = engagement.BusinessID
	}
	s.notifier.Notify(other, "dispute.created", map[string]interface{}{
		"dispute_id":    dispute.ID.String(),
		"engagement_id": engagementID.String(),
	})

	return dispute, nil
}

func (s *DisputeService) getEngagement(ctx context.Context, id uuid.UUID) (*models.Engagement, error) {
	engagement, err := s.engagements.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEngagementNotFound) {
			return nil, apperror.ErrEngagementNotFound
		}
		return nil, err
	}
	return engagement, nil
}

// GetDispute возвращает спор. Виден подателю, участникам сотрудничества
// и администратору.
func (s *DisputeService) GetDispute(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Dispute, error) {
	dispute, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, err
	}

	if actor.IsAdmin || dispute.RaisedByID == actor.UserID {
		return dispute, nil
	}

	engagement, err := s.getEngagement(ctx, dispute.EngagementID)
	if err != nil {
		return nil, err
	}
	if !engagement.IsParticipant(actor.UserID) {
		return nil, apperror.ErrForbidden
	}
	return dispute, nil
}

// ListEngagementDisputes возвращает споры по сотрудничеству.
func (s *DisputeService) ListEngagementDisputes(ctx context.Context, actor models.Actor, engagementID uuid.UUID) ([]models.Dispute, error) {
	engagement, err := s.getEngagement(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	if !engagement.IsParticipant(actor.UserID) && !actor.IsAdmin {
		return nil, apperror.ErrForbidden
	}
	return s.repo.ListByEngagement(ctx, engagementID)
}

// ListOpenDisputes возвращает нерешённые споры. Только для администратора.
func (s *DisputeService) ListOpenDisputes(ctx context.Context, actor models.Actor) ([]models.Dispute, error) {
	if !actor.IsAdmin {
		return nil, apperror.ErrForbidden
	}
	return s.repo.ListOpen(ctx)
}

// ResolveDispute разрешает спор. Только для администратора.
func (s *DisputeService) ResolveDispute(ctx context.Context, actor models.Actor, id uuid.UUID, status string, resolutionNotes *string) (*models.Dispute, error) {
	if !actor.IsAdmin {
		return nil, apperror.ErrForbidden
	}
	if _, ok := models.ValidDisputeStatuses[status]; !ok || status == models.DisputeStatusOpen {
		return nil, apperror.Validation("некорректный статус", map[string]string{
			"status": "допустимы UNDER_REVIEW и RESOLVED",
		})
	}
	if status == models.DisputeStatusResolved && (resolutionNotes == nil || strings.TrimSpace(*resolutionNotes) == "") {
		return nil, apperror.Validation("некорректные данные", map[string]string{
			"resolution_notes": "заметки о разрешении обязательны",
		})
	}

	dispute, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, err
	}

	if err := s.repo.UpdateStatus(ctx, id, status, trimPtr(resolutionNotes)); err != nil {
		return nil, err
	}

	engagement, err := s.getEngagement(ctx, dispute.EngagementID)
	if err == nil {
		payload := map[string]interface{}{
			"dispute_id": id.String(),
			"status":     status,
		}
		s.notifier.Notify(engagement.BusinessID, "dispute.status_changed", payload)
		s.notifier.Notify(engagement.FreelancerID, "dispute.status_changed", payload)
	}

	return s.repo.GetByID(ctx, id)
}

// AddAttachment прикладывает файл к спору. Доступно подателю и участникам.
func (s *DisputeService) AddAttachment(ctx context.Context, actor models.Actor, disputeID uuid.UUID, fileURL string, description *string) (*models.DisputeAttachment, error) {
	dispute, err := s.GetDispute(ctx, actor, disputeID)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin && dispute.RaisedByID != actor.UserID {
		// Администратор видит спор, но файлы прикладывают стороны.
		engagement, err := s.getEngagement(ctx, dispute.EngagementID)
		if err != nil {
			return nil, err
		}
		if !engagement.IsParticipant(actor.UserID) {
			return nil, apperror.ErrForbidden
		}
	}
	if strings.TrimSpace(fileURL) == "" {
		return nil, apperror.Validation("некорректные данные", map[string]string{"file_url": "ссылка на файл обязательна"})
	}

	attachment := &models.DisputeAttachment{
		DisputeID:   disputeID,
		FileURL:     fileURL,
		Description: trimPtr(description),
	}
	if err := s.repo.AddAttachment(ctx, attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}
