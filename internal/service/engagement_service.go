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

// EngagementRepo описывает зависимости EngagementService от слоя хранилища.
type EngagementRepo interface {
	CreateFromBid(ctx context.Context, engagement *models.Engagement, templates []models.ProjectMilestone) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Engagement, error)
	GetByBidID(ctx context.Context, bidID uuid.UUID) (*models.Engagement, error)
	ListForUser(ctx context.Context, userID uuid.UUID, status string) ([]models.EngagementSummary, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string, notes *string) error
	MarkFreelancerReceived(ctx context.Context, id uuid.UUID) error
	GetMilestone(ctx context.Context, id uuid.UUID) (*models.Milestone, error)
	UpdateMilestoneStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateMilestone(ctx context.Context, m *models.Milestone) error
	AppendMilestones(ctx context.Context, engagementID uuid.UUID, inputs []models.MilestoneInput) ([]models.Milestone, error)
	AddDeliverable(ctx context.Context, d *models.MilestoneDeliverable) error
	ListDeliverables(ctx context.Context, milestoneID uuid.UUID) ([]models.MilestoneDeliverable, error)
}

// BidRepoForEngagement описывает операции со ставками, нужные при принятии.
type BidRepoForEngagement interface {
	GetWithProject(ctx context.Context, id uuid.UUID) (*models.BidWithProject, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// Notifier рассылает уведомления. Реализация fire-and-forget:
// ошибка доставки не влияет на результат операции.
type Notifier interface {
	Notify(userID uuid.UUID, eventKind string, payload map[string]interface{})
}

// EngagementService реализует жизненный цикл сотрудничества:
// создание из принятой ставки, переходы статусов, этапы и оплату.
type EngagementService struct {
	repo     EngagementRepo
	bids     BidRepoForEngagement
	notifier Notifier
}

func NewEngagementService(repo EngagementRepo, bids BidRepoForEngagement, notifier Notifier) *EngagementService {
	return &EngagementService{repo: repo, bids: bids, notifier: notifier}
}

// CreateEngagementFromBid принимает ставку и создаёт сотрудничество.
// Операция идемпотентна: повторные и конкурентные вызовы по одной ставке
// возвращают одно и то же сотрудничество, created=true только у первого.
func (s *EngagementService) CreateEngagementFromBid(ctx context.Context, bidID, businessID uuid.UUID) (*models.Engagement, bool, error) {
	bwp, err := s.bids.GetWithProject(ctx, bidID)
	if err != nil {
		if errors.Is(err, repository.ErrBidNotFound) {
			return nil, false, apperror.ErrBidNotFound
		}
		return nil, false, err
	}

	if bwp.Project.BusinessID != businessID {
		return nil, false, apperror.ErrForbidden
	}

	// Идемпотентность: сотрудничество по этой ставке уже могло быть создано.
	existing, err := s.repo.GetByBidID(ctx, bidID)
	if err == nil {
		return existing, false, s.repairBidStatus(ctx, &bwp.Bid)
	}
	if !errors.Is(err, repository.ErrEngagementNotFound) {
		return nil, false, err
	}

	engagement := &models.Engagement{
		BidID:         bwp.Bid.ID,
		ProjectID:     bwp.Project.ID,
		BusinessID:    bwp.Project.BusinessID,
		FreelancerID:  bwp.Bid.FreelancerID,
		Status:        models.EngagementStatusNegotiation,
		PaymentStatus: models.PaymentStatusUnpaid,
	}

	err = s.repo.CreateFromBid(ctx, engagement, bwp.Milestones)
	if err != nil {
		// Конкурентный вызов успел создать сотрудничество первым.
		// Читаем строку победителя и отвечаем так же, как при повторе.
		if errors.Is(err, repository.ErrEngagementExists) {
			winner, getErr := s.repo.GetByBidID(ctx, bidID)
			if getErr != nil {
				return nil, false, getErr
			}
			return winner, false, s.repairBidStatus(ctx, &bwp.Bid)
		}
		return nil, false, err
	}

	s.notifier.Notify(engagement.FreelancerID, "bid.accepted", map[string]interface{}{
		"bid_id":        bidID.String(),
		"engagement_id": engagement.ID.String(),
		"project_id":    engagement.ProjectID.String(),
	})

	return engagement, true, nil
}

// repairBidStatus доводит статус ставки до ACCEPTED, если предыдущая
// попытка создала сотрудничество, но упала до обновления ставки.
func (s *EngagementService) repairBidStatus(ctx context.Context, bid *models.Bid) error {
	if bid.Status == models.BidStatusAccepted {
		return nil
	}
	return s.bids.UpdateStatus(ctx, bid.ID, models.BidStatusAccepted)
}

// GetEngagement возвращает сотрудничество участнику или администратору.
func (s *EngagementService) GetEngagement(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Engagement, error) {
	engagement, err := s.getEngagement(ctx, id)
	if err != nil {
		return nil, err
	}
	if !engagement.IsParticipant(actor.UserID) && !actor.IsAdmin {
		return nil, apperror.ErrForbidden
	}
	return engagement, nil
}

func (s *EngagementService) getEngagement(ctx context.Context, id uuid.UUID) (*models.Engagement, error) {
	engagement, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEngagementNotFound) {
			return nil, apperror.ErrEngagementNotFound
		}
		return nil, err
	}
	return engagement, nil
}

// ListMyEngagements возвращает сотрудничества пользователя.
func (s *EngagementService) ListMyEngagements(ctx context.Context, actor models.Actor, status string) ([]models.EngagementSummary, error) {
	if status != "" {
		if _, ok := models.EngagementTransitions[status]; !ok {
			return nil, apperror.Validation("некорректный фильтр", map[string]string{"status": "неизвестный статус"})
		}
	}
	return s.repo.ListForUser(ctx, actor.UserID, status)
}

// UpdateEngagementStatus переводит сотрудничество в новый статус.
// Отмена доступна обеим сторонам, остальные переходы только компании.
func (s *EngagementService) UpdateEngagementStatus(ctx context.Context, actor models.Actor, id uuid.UUID, newStatus string) (*models.Engagement, error) {
	if _, ok := models.EngagementTransitions[newStatus]; !ok {
		return nil, apperror.Validation("некорректный статус", map[string]string{"status": "неизвестный статус"})
	}

	engagement, err := s.getEngagement(ctx, id)
	if err != nil {
		return nil, err
	}

	if newStatus == models.EngagementStatusCancelled {
		if !engagement.IsParticipant(actor.UserID) {
			return nil, apperror.ErrForbidden
		}
	} else if engagement.BusinessID != actor.UserID {
		return nil, apperror.ErrForbidden
	}

	if !models.CanTransition(models.EngagementTransitions, engagement.Status, newStatus) {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "недопустимый переход статуса")
	}

	if err := s.repo.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, err
	}
	engagement.Status = newStatus

	other := engagement.FreelancerID
	if actor.UserID == engagement.FreelancerID {
		other = engagement.BusinessID
	}
	s.notifier.Notify(other, "engagement.status_changed", map[string]interface{}{
		"engagement_id": id.String(),
		"status":        newStatus,
	})

	return engagement, nil
}

// SetMilestoneStatus переводит этап в новый статус с проверкой роли:
// SUBMITTED ставит только фрилансер, APPROVED и REJECTED только компания,
// прочие целевые статусы тоже только компания.
func (s *EngagementService) SetMilestoneStatus(ctx context.Context, actor models.Actor, milestoneID uuid.UUID, newStatus string) (*models.Milestone, error) {
	if _, ok := models.ValidMilestoneStatuses[newStatus]; !ok {
		return nil, apperror.Validation("некорректный статус", map[string]string{"status": "неизвестный статус"})
	}

	milestone, engagement, err := s.getMilestoneWithEngagement(ctx, milestoneID)
	if err != nil {
		return nil, err
	}

	switch newStatus {
	case models.MilestoneStatusSubmitted:
		if engagement.FreelancerID != actor.UserID {
			return nil, apperror.ErrForbidden
		}
	default:
		if engagement.BusinessID != actor.UserID {
			return nil, apperror.ErrForbidden
		}
	}

	if !models.CanTransition(models.MilestoneTransitions, milestone.Status, newStatus) {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "недопустимый переход статуса этапа")
	}

	if err := s.repo.UpdateMilestoneStatus(ctx, milestoneID, newStatus); err != nil {
		return nil, err
	}
	milestone.Status = newStatus

	other := engagement.FreelancerID
	if actor.UserID == engagement.FreelancerID {
		other = engagement.BusinessID
	}
	s.notifier.Notify(other, "milestone.status_changed", map[string]interface{}{
		"milestone_id":  milestoneID.String(),
		"engagement_id": engagement.ID.String(),
		"status":        newStatus,
	})

	return milestone, nil
}

func (s *EngagementService) getMilestoneWithEngagement(ctx context.Context, milestoneID uuid.UUID) (*models.Milestone, *models.Engagement, error) {
	milestone, err := s.repo.GetMilestone(ctx, milestoneID)
	if err != nil {
		if errors.Is(err, repository.ErrMilestoneNotFound) {
			return nil, nil, apperror.ErrMilestoneNotFound
		}
		return nil, nil, err
	}

	engagement, err := s.getEngagement(ctx, milestone.EngagementID)
	if err != nil {
		return nil, nil, err
	}
	return milestone, engagement, nil
}

// UpdateMilestone редактирует поля этапа. Доступно только компании.
func (s *EngagementService) UpdateMilestone(ctx context.Context, actor models.Actor, milestoneID uuid.UUID, in models.MilestoneInput) (*models.Milestone, error) {
	milestone, engagement, err := s.getMilestoneWithEngagement(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	if engagement.BusinessID != actor.UserID {
		return nil, apperror.ErrForbidden
	}

	if details := validateMilestoneInput(in); len(details) > 0 {
		return nil, apperror.Validation("некорректные данные этапа", details)
	}

	milestone.Title = in.Title
	milestone.Description = in.Description
	milestone.Amount = in.Amount
	milestone.DueDate = in.DueDate

	if err := s.repo.UpdateMilestone(ctx, milestone); err != nil {
		return nil, err
	}
	return milestone, nil
}

// AppendMilestones добавляет этапы к сотрудничеству. Доступно только компании.
func (s *EngagementService) AppendMilestones(ctx context.Context, actor models.Actor, engagementID uuid.UUID, inputs []models.MilestoneInput) ([]models.Milestone, error) {
	engagement, err := s.getEngagement(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	if engagement.BusinessID != actor.UserID {
		return nil, apperror.ErrForbidden
	}

	if len(inputs) == 0 {
		return nil, apperror.Validation("некорректные данные этапов", map[string]string{"milestones": "список этапов пуст"})
	}

	taken := map[int]struct{}{}
	for _, m := range engagement.Milestones {
		taken[m.SequenceOrder] = struct{}{}
	}
	for _, in := range inputs {
		if details := validateMilestoneInput(in); len(details) > 0 {
			return nil, apperror.Validation("некорректные данные этапа", details)
		}
		if _, dup := taken[in.SequenceOrder]; dup {
			return nil, apperror.Validation("некорректные данные этапов",
				map[string]string{"sequence_order": "порядковый номер уже занят"})
		}
		taken[in.SequenceOrder] = struct{}{}
	}

	return s.repo.AppendMilestones(ctx, engagementID, inputs)
}

func validateMilestoneInput(in models.MilestoneInput) map[string]string {
	details := map[string]string{}
	if strings.TrimSpace(in.Title) == "" {
		details["title"] = "название этапа обязательно"
	}
	if in.Amount < 0 {
		details["amount"] = "сумма не может быть отрицательной"
	}
	if in.SequenceOrder < 0 {
		details["sequence_order"] = "порядковый номер не может быть отрицательным"
	}
	return details
}

// AddDeliverable прикладывает результат работы к этапу.
// Доступно только фрилансеру сотрудничества.
func (s *EngagementService) AddDeliverable(ctx context.Context, actor models.Actor, milestoneID uuid.UUID, fileURL string, notes *string) (*models.MilestoneDeliverable, error) {
	_, engagement, err := s.getMilestoneWithEngagement(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	if engagement.FreelancerID != actor.UserID {
		return nil, apperror.ErrForbidden
	}
	if strings.TrimSpace(fileURL) == "" {
		return nil, apperror.Validation("некорректные данные", map[string]string{"file_url": "ссылка на файл обязательна"})
	}

	deliverable := &models.MilestoneDeliverable{
		MilestoneID: milestoneID,
		FileURL:     fileURL,
		Notes:       notes,
	}
	if err := s.repo.AddDeliverable(ctx, deliverable); err != nil {
		return nil, err
	}
	return deliverable, nil
}

// ListDeliverables возвращает результаты работ по этапу, старые первыми.
func (s *EngagementService) ListDeliverables(ctx context.Context, actor models.Actor, milestoneID uuid.UUID) ([]models.MilestoneDeliverable, error) {
	_, engagement, err := s.getMilestoneWithEngagement(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	if !engagement.IsParticipant(actor.UserID) && !actor.IsAdmin {
		return nil, apperror.ErrForbidden
	}
	return s.repo.ListDeliverables(ctx, milestoneID)
}

// UpdatePaymentStatus выставляет метку оплаты. Доступно только компании.
// Метка информационная и не сверяется с реальными платежами.
func (s *EngagementService) UpdatePaymentStatus(ctx context.Context, actor models.Actor, engagementID uuid.UUID, paymentStatus string, notes *string) (*models.Engagement, error) {
	if _, ok := models.ValidPaymentStatuses[paymentStatus]; !ok {
		return nil, apperror.Validation("некорректный статус оплаты", map[string]string{"payment_status": "неизвестный статус"})
	}

	engagement, err := s.getEngagement(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	if engagement.BusinessID != actor.UserID {
		return nil, apperror.ErrForbidden
	}

	if err := s.repo.UpdatePaymentStatus(ctx, engagementID, paymentStatus, notes); err != nil {
		return nil, err
	}
	engagement.PaymentStatus = paymentStatus
	engagement.PaymentNotes = notes

	s.notifier.Notify(engagement.FreelancerID, "engagement.payment_status_changed", map[string]interface{}{
		"engagement_id":  engagementID.String(),
		"payment_status": paymentStatus,
	})

	return engagement, nil
}

// MarkFreelancerReceived фиксирует подтверждение получения оплаты.
// Флаг независим от метки оплаты и не сверяется с ней.
func (s *EngagementService) MarkFreelancerReceived(ctx context.Context, actor models.Actor, engagementID uuid.UUID) (*models.Engagement, error) {
	engagement, err := s.getEngagement(ctx, engagementID)
	if err != nil {
		return nil, err
	}
	if engagement.FreelancerID != actor.UserID {
		return nil, apperror.ErrForbidden
	}

	if err := s.repo.MarkFreelancerReceived(ctx, engagementID); err != nil {
		return nil, err
	}
	return s.getEngagement(ctx, engagementID)
}
