package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dkruglov/freemarket-backend/internal/models"
	"github.com/dkruglov/freemarket-backend/internal/pkg/apperror"
	"github.com/dkruglov/freemarket-backend/internal/repository"
)

type mockEngagementRepo struct {
	mock.Mock
}

func (m *mockEngagementRepo) CreateFromBid(ctx context.Context, engagement *models.Engagement, templates []models.ProjectMilestone) error {
	args := m.Called(ctx, engagement, templates)
	if args.Error(0) == nil {
		engagement.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockEngagementRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Engagement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Engagement), args.Error(1)
}

func (m *mockEngagementRepo) GetByBidID(ctx context.Context, bidID uuid.UUID) (*models.Engagement, error) {
	args := m.Called(ctx, bidID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Engagement), args.Error(1)
}

func (m *mockEngagementRepo) ListForUser(ctx context.Context, userID uuid.UUID, status string) ([]models.EngagementSummary, error) {
	args := m.Called(ctx, userID, status)
	return args.Get(0).([]models.EngagementSummary), args.Error(1)
}

func (m *mockEngagementRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockEngagementRepo) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string, notes *string) error {
	args := m.Called(ctx, id, paymentStatus, notes)
	return args.Error(0)
}

func (m *mockEngagementRepo) MarkFreelancerReceived(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockEngagementRepo) GetMilestone(ctx context.Context, id uuid.UUID) (*models.Milestone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Milestone), args.Error(1)
}

func (m *mockEngagementRepo) UpdateMilestoneStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockEngagementRepo) UpdateMilestone(ctx context.Context, milestone *models.Milestone) error {
	args := m.Called(ctx, milestone)
	return args.Error(0)
}

func (m *mockEngagementRepo) AppendMilestones(ctx context.Context, engagementID uuid.UUID, inputs []models.MilestoneInput) ([]models.Milestone, error) {
	args := m.Called(ctx, engagementID, inputs)
	return args.Get(0).([]models.Milestone), args.Error(1)
}

func (m *mockEngagementRepo) AddDeliverable(ctx context.Context, d *models.MilestoneDeliverable) error {
	args := m.Called(ctx, d)
	if args.Error(0) == nil {
		d.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockEngagementRepo) ListDeliverables(ctx context.Context, milestoneID uuid.UUID) ([]models.MilestoneDeliverable, error) {
	args := m.Called(ctx, milestoneID)
	return args.Get(0).([]models.MilestoneDeliverable), args.Error(1)
}

type mockBidRepoForEngagement struct {
	mock.Mock
}

func (m *mockBidRepoForEngagement) GetWithProject(ctx context.Context, id uuid.UUID) (*models.BidWithProject, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BidWithProject), args.Error(1)
}

func (m *mockBidRepoForEngagement) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type noopNotifier struct{}

func (noopNotifier) Notify(userID uuid.UUID, eventKind string, payload map[string]interface{}) {}

func newBidWithProject(businessID, freelancerID uuid.UUID, bidStatus string) *models.BidWithProject {
	projectID := uuid.New()
	return &models.BidWithProject{
		Bid: models.Bid{
			ID:           uuid.New(),
			ProjectID:    projectID,
			FreelancerID: freelancerID,
			BidAmount:    1500,
			BidType:      models.BidTypeFixed,
			Status:       bidStatus,
		},
		Project: models.Project{
			ID:         projectID,
			BusinessID: businessID,
			Title:      "Разработка API",
			Status:     models.ProjectStatusOpen,
		},
		Milestones: []models.ProjectMilestone{
			{ProjectID: projectID, Title: "Прототип", Amount: 500, SequenceOrder: 1},
			{ProjectID: projectID, Title: "Релиз", Amount: 1000, SequenceOrder: 2},
		},
	}
}

func TestEngagementService_CreateEngagementFromBid_FirstCall(t *testing.T) {
	engRepo := new(mockEngagementRepo)
	bidRepo := new(mockBidRepoForEngagement)
	svc := NewEngagementService(engRepo, bidRepo, noopNotifier{})
	ctx := context.Background()

	businessID := uuid.New()
	freelancerID := uuid.New()
	bwp := newBidWithProject(businessID, freelancerID, models.BidStatusSubmitted)

	bidRepo.On("GetWithProject", ctx, bwp.Bid.ID).Return(bwp, nil)
	engRepo.On("GetByBidID", ctx, bwp.Bid.ID).Return(nil, repository.ErrEngagementNotFound)
	engRepo.On("CreateFromBid", ctx, mock.AnythingOfType("*models.Engagement"), bwp.Milestones).Return(nil)

	engagement, created, err := svc.CreateEngagementFromBid(ctx, bwp.Bid.ID, businessID)

	assert.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.EngagementStatusNegotiation, engagement.Status)
	assert.Equal(t, models.PaymentStatusUnpaid, engagement.PaymentStatus)
	assert.Equal(t, businessID, engagement.BusinessID)
	assert.Equal(t, freelancerID, engagement.FreelancerID)
	engRepo.AssertExpectations(t)
}

func TestEngagementService_CreateEngagementFromBid_BidNotFound(t *testing.T) {
	engRepo := new(mockEngagementRepo)
	bidRepo := new(mockBidRepoForEngagement)
	svc := NewEngagementService(engRepo, bidRepo, noopNotifier{})
	ctx := context.Background()

	bidID := uuid.New()
	bidRepo.On("GetWithProject", ctx, bidID).Return(nil, repository.ErrBidNotFound)

	_, _, err := svc.CreateEngagementFromBid(ctx, bidID, uuid.New())

	assert.ErrorIs(t, err, apperror.ErrBidNotFound)
}

func TestEngagementService_CreateEngagementFromBid_ForeignBusiness(t *testing.T) {
	engRepo := new(mockEngagementRepo)
	bidRepo := new(mockBidRepoForEngagement)
	svc := NewEngagementService(engRepo, bidRepo, noopNotifier{})
	ctx := context.Background()

	bwp := newBidWithProject(uuid.New(), uuid.New(), models.BidStatusSubmitted)
	bidRepo.On("GetWithProject", ctx, bwp.Bid.ID).Return(bwp, nil)

	_, _, err := svc.CreateEngagementFromBid(ctx, bwp.Bid.ID, uuid.New())

	assert.ErrorIs(t, err, apperror.ErrForbidden)
	engRepo.AssertNotCalled(t, "CreateFromBid", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngagementService_CreateEngagementFromBid_RepeatCall(t *testing.T) {
	engRepo := new(mockEngagementRepo)
	bidRepo := new(mockBidRepoForEngagement)
	svc := NewEngagementService(engRepo, bidRepo, noopNotifier{})
	ctx := context.Background()

	businessID := uuid.New()
	bwp := newBidWithProject(businessID, uuid.New(), models.BidStatusAccepted)
	existing := &models.Engagement{
		ID:         uuid.New(),
		BidID:      bwp.Bid.ID,
		BusinessID: businessID,
		Status:     models.EngagementStatusNegotiation,
	}

	bidRepo.On("GetWithProject", ctx, bwp.Bid.ID).Return(bwp, nil)
	engRepo.On("GetByBidID", ctx, bwp.Bid.ID).Return(existing, nil)

	engagement, created, err := svc.CreateEngagementFromBid(ctx, bwp.Bid.ID, businessID)

	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, engagement.ID)
	engRepo.AssertNotCalled(t, "CreateFromBid", mock.Anything, mock.Anything, mock.Anything)
	bidRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngagementService_CreateEngagementFromBid_RepairsBidStatus(t *testing.T) {
	engRepo := new(mockEngagementRepo)
	bidRepo := new(mockBidRepoForEngagement)
	svc := NewEngagementService(engRepo, bidRepo, noopNotifier{})
	ctx := context.Background()

	businessID := uuid.New()
	// Сотрудничество есть, но ставка осталась в SUBMITTED после сбоя.
	bwp := newBidWithProject(businessID, uuid.New(), models.BidStatusSubmitted)
	existing := &models.Engagement{ID: uuid.New(), BidID: bwp.Bid.ID, BusinessID: businessID}

	bidRepo.On("GetWithProject", ctx, bwp.Bid.ID).Return(bwp, nil)
	engRepo.On("GetByBidID", ctx, bwp.Bid.ID).Return(existing, nil)
	bidRepo.On("UpdateStatus", ctx, bwp.Bid.ID, models.BidStatusAccepted).Return(nil)

	engagement, created, err := svc.CreateEngagementFromBid(ctx, bwp.Bid.ID, businessID)

	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, engagement.ID)
	bidRepo.AssertExpectations(t)
}

func TestEngagementService_CreateEngagementFromBid_RaceLoserReadsWinner(t *testing.T) {
	engRepo := new(mockEngagementRepo)
	bidRepo := new(mockBidRepoForEngagement)
	svc := NewEngagementService(engRepo, bidRepo, noopNotifier{})
	ctx := context.Background()

	businessID := uuid.New()
	bwp := newBidWithProject(businessID, uuid.New(), models.BidStatusAccepted)
	winner := &models.Engagement{ID: uuid.New(), BidID: bwp.Bid.ID, BusinessID: businessID}

	bidRepo.On("GetWithProject", ctx, bwp.Bid.ID).Return(bwp, nil)
	// Между проверкой и вставкой конкурент успел создать сотрудничество.
	engRepo.On("GetByBidID", ctx, bwp.Bid.ID).Return(nil, repository.ErrEngagementNotFound).Once()
	engRepo.On("CreateFromBid", ctx, mock.AnythingOfType("*models.Engagement"), bwp.Milestones).
		Return(repository.ErrEngagementExists)
	engRepo.On("GetByBidID", ctx, bwp.Bid.ID).Return(winner, nil).Once()

	engagement, created, err := svc.CreateEngagementFromBid(ctx, bwp.Bid.ID, businessID)

	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, winner.ID, engagement.ID)
	engRepo.AssertExpectations(t)
}

func TestEngagementService_UpdateEngagementStatus_CancelByEitherSide(t *testing.T) {
	businessID := uuid.New()
	freelancerID := uuid.New()
	engagementID := uuid.New()

	for _, actorID := range []uuid.UUID{businessID, freelancerID} {
		engRepo := new(mockEngagementRepo)
		svc := NewEngagementService(engRepo, new(mockBidRepoForEngagement), noopNotifier{})
		ctx := context.Background()

		engRepo.On("GetByID", ctx, engagementID).Return(&models.Engagement{
			ID:           engagementID,
			BusinessID:   businessID,
			FreelancerID: freelancerID,
			Status:       models.EngagementStatusNegotiation,
		}, nil)
		engRepo.On("UpdateStatus", ctx, engagementID, models.EngagementStatusCancelled).Return(nil)

		engagement, err := svc.UpdateEngagementStatus(ctx, models.Actor{UserID: actorID}, engagementID, models.EngagementStatusCancelled)

		assert.NoError(t, err)
		assert.Equal(t, models.EngagementStatusCancelled, engagement.Status)
	}
}

func TestEngagementService_UpdateEngagementStatus_StartFreelancerForbidden(t *testing.T) {
	engRepo := new(mockEngagementRepo)
	svc := NewEngagementService(engRepo, new(mockBidRepoForEngagement), noopNotifier{})
	ctx := context.Background()

	freelancerID := uuid.New()
	engagementID := uuid.New()
	engRepo.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:           engagementID,
		BusinessID:   uuid.New(),
		FreelancerID: freelancerID,
		Status:       models.EngagementStatusNegotiation,
	}, nil)

	_, err := svc.UpdateEngagementStatus(ctx, models.Actor{UserID: freelancerID}, engagementID, models.EngagementStatusActive)

	assert.ErrorIs(t, err, apperror.ErrForbidden)
	engRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngagementService_UpdateEngagementStatus_OutsiderForbidden(t *testing.T) {
	engRepo := new(mockEngagementRepo)
	svc := NewEngagementService(engRepo, new(mockBidRepoForEngagement), noopNotifier{})
	ctx := context.Background()

	engagementID := uuid.New()
	engRepo.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:           engagementID,
		BusinessID:   uuid.New(),
		FreelancerID: uuid.New(),
		Status:       models.EngagementStatusActive,
	}, nil)

	_, err := svc.UpdateEngagementStatus(ctx, models.Actor{UserID: uuid.New()}, engagementID, models.EngagementStatusCancelled)

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestEngagementService_UpdateEngagementStatus_TerminalStateRejected(t *testing.T) {
	engRepo := new(mockEngagementRepo)
	svc := NewEngagementService(engRepo, new(mockBidRepoForEngagement), noopNotifier{})
	ctx := context.Background()

	businessID := uuid.New()
	engagementID := uuid.New()
	engRepo.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:           engagementID,
		BusinessID:   businessID,
		FreelancerID: uuid.New(),
		Status:       models.EngagementStatusCompleted,
	}, nil)

	_, err := svc.UpdateEngagementStatus(ctx, models.Actor{UserID: businessID}, engagementID, models.EngagementStatusActive)

	assert.Error(t, err)
	engRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngagementService_SetMilestoneStatus_SubmitOnlyFreelancer(t *testing.T) {
	engRepo := new(mockEngagementRepo)
	svc := NewEngagementService(engRepo, new(mockBidRepoForEngagement), noopNotifier{})
	ctx := context.Background()

	businessID := uuid.New()
	freelancerID := uuid.New()
	engagementID := uuid.New()
	milestoneID := uuid.New()

	engRepo.On("GetMilestone", ctx, milestoneID).Return(&models.Milestone{
		ID:           milestoneID,
		EngagementID: engagementID,
		Status:       models.MilestoneStatusInProgress,
	}, nil)
	engRepo.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:           engagementID,
		BusinessID:   businessID,
		FreelancerID: freelancerID,
		Status:       models.EngagementStatusActive,
	}, nil)

	// Компания не может отметить этап как SUBMITTED.
	_, err := svc.SetMilestoneStatus(ctx, models.Actor{UserID: businessID}, milestoneID, models.MilestoneStatusSubmitted)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	engRepo.On("UpdateMilestoneStatus", ctx, milestoneID, models.MilestoneStatusSubmitted).Return(nil)

	milestone, err := svc.SetMilestoneStatus(ctx, models.Actor{UserID: freelancerID}, milestoneID, models.MilestoneStatusSubmitted)
	assert.NoError(t, err)
	assert.Equal(t, models.MilestoneStatusSubmitted, milestone.Status)
}

func TestEngagementService_SetMilestoneStatus_ApproveOnlyBusiness(t *testing.T) {
	engRepo := new(mockEngagementRepo)
	svc := NewEngagementService(engRepo, new(mockBidRepoForEngagement), noopNotifier{})
	ctx := context.Background()

	businessID := uuid.New()
	freelancerID := uuid.New()
	engagementID := uuid.New()
	milestoneID := uuid.New()

	engRepo.On("GetMilestone", ctx, milestoneID).Return(&models.Milestone{
		ID:           milestoneID,
		EngagementID: engagementID,
		Status:       models.MilestoneStatusSubmitted,
	}, nil)
	engRepo.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:           engagementID,
		BusinessID:   businessID,
		FreelancerID: freelancerID,
		Status:       models.EngagementStatusActive,
	}, nil)

	_, err := svc.SetMilestoneStatus(ctx, models.Actor{UserID: freelancerID}, milestoneID, models.MilestoneStatusApproved)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	engRepo.On("UpdateMilestoneStatus", ctx, milestoneID, models.MilestoneStatusApproved).Return(nil)

	milestone, err := svc.SetMilestoneStatus(ctx, models.Actor{UserID: businessID}, milestoneID, models.MilestoneStatusApproved)
	assert.NoError(t, err)
	assert.Equal(t, models.MilestoneStatusApproved, milestone.Status)
}

func TestEngagementService_SetMilestoneStatus_ApproveFromPendingRejected(t *testing.T) {
	engRepo := new(mockEngagementRepo)
	svc := NewEngagementService(engRepo, new(mockBidRepoForEngagement), noopNotifier{})
	ctx := context.Background()

	businessID := uuid.New()
	engagementID := uuid.New()
	milestoneID := uuid.New()

	engRepo.On("GetMilestone", ctx, milestoneID).Return(&models.Milestone{
		ID:           milestoneID,
		EngagementID: engagementID,
		Status:       models.MilestoneStatusPending,
	}, nil)
	engRepo.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:           engagementID,
		BusinessID:   businessID,
		FreelancerID: uuid.New(),
		Status:       models.EngagementStatusActive,
	}, nil)

	_, err := svc.SetMilestoneStatus(ctx, models.Actor{UserID: businessID}, milestoneID, models.MilestoneStatusApproved)

	assert.Error(t, err)
	engRepo.AssertNotCalled(t, "UpdateMilestoneStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngagementService_UpdatePaymentStatus_OnlyBusiness(t *testing.T) {
	engRepo := new(mockEngagementRepo)
	svc := NewEngagementService(engRepo, new(mockBidRepoForEngagement), noopNotifier{})
	ctx := context.Background()

	businessID := uuid.New()
	freelancerID := uuid.New()
	engagementID := uuid.New()
	engRepo.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:           engagementID,
		BusinessID:   businessID,
		FreelancerID: freelancerID,
		Status:       models.EngagementStatusActive,
	}, nil)

	_, err := svc.UpdatePaymentStatus(ctx, models.Actor{UserID: freelancerID}, engagementID, models.PaymentStatusPaid, nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	engRepo.On("UpdatePaymentStatus", ctx, engagementID, models.PaymentStatusPaid, (*string)(nil)).Return(nil)

	engagement, err := svc.UpdatePaymentStatus(ctx, models.Actor{UserID: businessID}, engagementID, models.PaymentStatusPaid, nil)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, engagement.PaymentStatus)
}

func TestEngagementService_MarkFreelancerReceived_OnlyFreelancer(t *testing.T) {
	engRepo := new(mockEngagementRepo)
	svc := NewEngagementService(engRepo, new(mockBidRepoForEngagement), noopNotifier{})
	ctx := context.Background()

	businessID := uuid.New()
	freelancerID := uuid.New()
	engagementID := uuid.New()
	engagement := &models.Engagement{
		ID:           engagementID,
		BusinessID:   businessID,
		FreelancerID: freelancerID,
		Status:       models.EngagementStatusActive,
	}
	engRepo.On("GetByID", ctx, engagementID).Return(engagement, nil)

	_, err := svc.MarkFreelancerReceived(ctx, models.Actor{UserID: businessID}, engagementID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	engRepo.On("MarkFreelancerReceived", ctx, engagementID).Return(nil)

	_, err = svc.MarkFreelancerReceived(ctx, models.Actor{UserID: freelancerID}, engagementID)
	assert.NoError(t, err)
}

func TestEngagementService_AppendMilestones_DuplicateSequenceOrder(t *testing.T) {
	engRepo := new(mockEngagementRepo)
	svc := NewEngagementService(engRepo, new(mockBidRepoForEngagement), noopNotifier{})
	ctx := context.Background()

	businessID := uuid.New()
	engagementID := uuid.New()
	engRepo.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:           engagementID,
		BusinessID:   businessID,
		FreelancerID: uuid.New(),
		Status:       models.EngagementStatusNegotiation,
		Milestones: []models.Milestone{
			{SequenceOrder: 1, Status: models.MilestoneStatusPending},
		},
	}, nil)

	_, err := svc.AppendMilestones(ctx, models.Actor{UserID: businessID}, engagementID, []models.MilestoneInput{
		{Title: "Дубликат", SequenceOrder: 1},
	})

	assert.Error(t, err)
	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeValidation, appErr.Code)
}
