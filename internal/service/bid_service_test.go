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

type mockBidRepo struct {
	mock.Mock
}

func (m *mockBidRepo) Create(ctx context.Context, bid *models.Bid) error {
	args := m.Called(ctx, bid)
	if args.Error(0) == nil {
		bid.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockBidRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bid), args.Error(1)
}

func (m *mockBidRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]models.Bid), args.Error(1)
}

func (m *mockBidRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Bid, error) {
	args := m.Called(ctx, freelancerID)
	return args.Get(0).([]models.Bid), args.Error(1)
}

func (m *mockBidRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockBidRepo) Withdraw(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockProjectGetter struct {
	mock.Mock
}

func (m *mockProjectGetter) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func validBidInput(projectID uuid.UUID) CreateBidInput {
	return CreateBidInput{
		ProjectID:            projectID,
		BidAmount:            2000,
		BidType:              models.BidTypeFixed,
		ProposedTimelineDays: 14,
	}
}

func TestBidService_CreateBid(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projects := new(mockProjectGetter)
	svc := NewBidService(bidRepo, projects, noopNotifier{})
	ctx := context.Background()

	freelancerID := uuid.New()
	projectID := uuid.New()
	projects.On("GetByID", ctx, projectID).Return(&models.Project{
		ID:         projectID,
		BusinessID: uuid.New(),
		Status:     models.ProjectStatusOpen,
	}, nil)
	bidRepo.On("Create", ctx, mock.AnythingOfType("*models.Bid")).Return(nil)

	bid, err := svc.CreateBid(ctx, models.Actor{UserID: freelancerID, Role: models.RoleFreelancer}, validBidInput(projectID))

	assert.NoError(t, err)
	assert.Equal(t, freelancerID, bid.FreelancerID)
	assert.Equal(t, models.BidStatusSubmitted, bid.Status)
}

func TestBidService_CreateBid_BusinessForbidden(t *testing.T) {
	svc := NewBidService(new(mockBidRepo), new(mockProjectGetter), noopNotifier{})
	ctx := context.Background()

	_, err := svc.CreateBid(ctx, models.Actor{UserID: uuid.New(), Role: models.RoleBusiness}, validBidInput(uuid.New()))

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestBidService_CreateBid_ClosedProject(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projects := new(mockProjectGetter)
	svc := NewBidService(bidRepo, projects, noopNotifier{})
	ctx := context.Background()

	projectID := uuid.New()
	projects.On("GetByID", ctx, projectID).Return(&models.Project{
		ID:         projectID,
		BusinessID: uuid.New(),
		Status:     models.ProjectStatusClosed,
	}, nil)

	_, err := svc.CreateBid(ctx, models.Actor{UserID: uuid.New(), Role: models.RoleFreelancer}, validBidInput(projectID))

	assert.Error(t, err)
	bidRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBidService_CreateBid_InvalidInput(t *testing.T) {
	svc := NewBidService(new(mockBidRepo), new(mockProjectGetter), noopNotifier{})
	ctx := context.Background()

	in := validBidInput(uuid.New())
	in.BidAmount = 0
	in.BidType = "DAILY"

	_, err := svc.CreateBid(ctx, models.Actor{UserID: uuid.New(), Role: models.RoleFreelancer}, in)

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeValidation, appErr.Code)
	assert.Contains(t, appErr.Details, "bid_amount")
	assert.Contains(t, appErr.Details, "bid_type")
}

func TestBidService_CreateBid_DuplicateConflict(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projects := new(mockProjectGetter)
	svc := NewBidService(bidRepo, projects, noopNotifier{})
	ctx := context.Background()

	projectID := uuid.New()
	projects.On("GetByID", ctx, projectID).Return(&models.Project{
		ID:         projectID,
		BusinessID: uuid.New(),
		Status:     models.ProjectStatusOpen,
	}, nil)
	bidRepo.On("Create", ctx, mock.AnythingOfType("*models.Bid")).Return(repository.ErrBidExists)

	_, err := svc.CreateBid(ctx, models.Actor{UserID: uuid.New(), Role: models.RoleFreelancer}, validBidInput(projectID))

	assert.True(t, apperror.IsConflict(err))
}

func TestBidService_UpdateBidStatus_AcceptedImmutable(t *testing.T) {
	bidRepo := new(mockBidRepo)
	projects := new(mockProjectGetter)
	svc := NewBidService(bidRepo, projects, noopNotifier{})
	ctx := context.Background()

	businessID := uuid.New()
	projectID := uuid.New()
	bidID := uuid.New()
	bidRepo.On("GetByID", ctx, bidID).Return(&models.Bid{
		ID:        bidID,
		ProjectID: projectID,
		Status:    models.BidStatusAccepted,
	}, nil)
	projects.On("GetByID", ctx, projectID).Return(&models.Project{
		ID:         projectID,
		BusinessID: businessID,
	}, nil)

	_, err := svc.UpdateBidStatus(ctx, models.Actor{UserID: businessID}, bidID, models.BidStatusRejected)

	assert.Error(t, err)
	bidRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestBidService_UpdateBidStatus_AcceptViaStatusRejected(t *testing.T) {
	svc := NewBidService(new(mockBidRepo), new(mockProjectGetter), noopNotifier{})
	ctx := context.Background()

	// ACCEPTED не входит в список допустимых значений для этой операции.
	_, err := svc.UpdateBidStatus(ctx, models.Actor{UserID: uuid.New()}, uuid.New(), models.BidStatusAccepted)

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeValidation, appErr.Code)
}

func TestBidService_WithdrawBid(t *testing.T) {
	bidRepo := new(mockBidRepo)
	svc := NewBidService(bidRepo, new(mockProjectGetter), noopNotifier{})
	ctx := context.Background()

	freelancerID := uuid.New()
	bidID := uuid.New()
	bidRepo.On("GetByID", ctx, bidID).Return(&models.Bid{
		ID:           bidID,
		FreelancerID: freelancerID,
		Status:       models.BidStatusSubmitted,
	}, nil)
	bidRepo.On("Withdraw", ctx, bidID).Return(nil)

	err := svc.WithdrawBid(ctx, models.Actor{UserID: freelancerID}, bidID)

	assert.NoError(t, err)
	bidRepo.AssertExpectations(t)
}

func TestBidService_WithdrawBid_AcceptedRejected(t *testing.T) {
	bidRepo := new(mockBidRepo)
	svc := NewBidService(bidRepo, new(mockProjectGetter), noopNotifier{})
	ctx := context.Background()

	freelancerID := uuid.New()
	bidID := uuid.New()
	bidRepo.On("GetByID", ctx, bidID).Return(&models.Bid{
		ID:           bidID,
		FreelancerID: freelancerID,
		Status:       models.BidStatusAccepted,
	}, nil)

	err := svc.WithdrawBid(ctx, models.Actor{UserID: freelancerID}, bidID)

	assert.Error(t, err)
	bidRepo.AssertNotCalled(t, "Withdraw", mock.Anything, mock.Anything)
}

func TestBidService_WithdrawBid_ForeignBid(t *testing.T) {
	bidRepo := new(mockBidRepo)
	svc := NewBidService(bidRepo, new(mockProjectGetter), noopNotifier{})
	ctx := context.Background()

	bidID := uuid.New()
	bidRepo.On("GetByID", ctx, bidID).Return(&models.Bid{
		ID:           bidID,
		FreelancerID: uuid.New(),
		Status:       models.BidStatusSubmitted,
	}, nil)

	err := svc.WithdrawBid(ctx, models.Actor{UserID: uuid.New()}, bidID)

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
