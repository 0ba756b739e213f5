package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dkruglov/freemarket-backend/internal/models"
	"github.com/dkruglov/freemarket-backend/internal/pkg/apperror"
)

type mockDisputeRepo struct {
	mock.Mock
}

func (m *mockDisputeRepo) Create(ctx context.Context, dispute *models.Dispute) error {
	args := m.Called(ctx, dispute)
	if args.Error(0) == nil {
		dispute.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockDisputeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) ListByEngagement(ctx context.Context, engagementID uuid.UUID) ([]models.Dispute, error) {
	args := m.Called(ctx, engagementID)
	return args.Get(0).([]models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) ListOpen(ctx context.Context) ([]models.Dispute, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, resolutionNotes *string) error {
	args := m.Called(ctx, id, status, resolutionNotes)
	return args.Error(0)
}

func (m *mockDisputeRepo) AddAttachment(ctx context.Context, a *models.DisputeAttachment) error {
	args := m.Called(ctx, a)
	if args.Error(0) == nil {
		a.ID = uuid.New()
	}
	return args.Error(0)
}

func TestDisputeService_CreateDispute(t *testing.T) {
	disputeRepo := new(mockDisputeRepo)
	engagements := new(mockEngagementGetter)
	svc := NewDisputeService(disputeRepo, engagements, noopNotifier{})
	ctx := context.Background()

	freelancerID := uuid.New()
	engagementID := uuid.New()
	engagements.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:           engagementID,
		BusinessID:   uuid.New(),
		FreelancerID: freelancerID,
		Status:       models.EngagementStatusActive,
	}, nil)
	disputeRepo.On("Create", ctx, mock.AnythingOfType("*models.Dispute")).Return(nil)

	dispute, err := svc.CreateDispute(ctx, models.Actor{UserID: freelancerID}, engagementID, "NON_PAYMENT", "оплата не поступила")

	assert.NoError(t, err)
	assert.Equal(t, models.DisputeStatusOpen, dispute.Status)
	assert.Equal(t, freelancerID, dispute.RaisedByID)
}

func TestDisputeService_CreateDispute_OutsiderForbidden(t *testing.T) {
	engagements := new(mockEngagementGetter)
	svc := NewDisputeService(new(mockDisputeRepo), engagements, noopNotifier{})
	ctx := context.Background()

	engagementID := uuid.New()
	engagements.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:           engagementID,
		BusinessID:   uuid.New(),
		FreelancerID: uuid.New(),
	}, nil)

	_, err := svc.CreateDispute(ctx, models.Actor{UserID: uuid.New()}, engagementID, "NON_PAYMENT", "оплата не поступила")

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestDisputeService_CreateDispute_EmptyFields(t *testing.T) {
	engagements := new(mockEngagementGetter)
	svc := NewDisputeService(new(mockDisputeRepo), engagements, noopNotifier{})
	ctx := context.Background()

	businessID := uuid.New()
	engagementID := uuid.New()
	engagements.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:           engagementID,
		BusinessID:   businessID,
		FreelancerID: uuid.New(),
	}, nil)

	_, err := svc.CreateDispute(ctx, models.Actor{UserID: businessID}, engagementID, "  ", "")

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeValidation, appErr.Code)
	assert.Contains(t, appErr.Details, "reason_code")
	assert.Contains(t, appErr.Details, "description")
}

func TestDisputeService_ListOpenDisputes_AdminOnly(t *testing.T) {
	disputeRepo := new(mockDisputeRepo)
	svc := NewDisputeService(disputeRepo, new(mockEngagementGetter), noopNotifier{})
	ctx := context.Background()

	_, err := svc.ListOpenDisputes(ctx, models.Actor{UserID: uuid.New()})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	disputeRepo.On("ListOpen", ctx).Return([]models.Dispute{}, nil)

	_, err = svc.ListOpenDisputes(ctx, models.Actor{UserID: uuid.New(), IsAdmin: true})
	assert.NoError(t, err)
}

func TestDisputeService_ResolveDispute(t *testing.T) {
	disputeRepo := new(mockDisputeRepo)
	engagements := new(mockEngagementGetter)
	svc := NewDisputeService(disputeRepo, engagements, noopNotifier{})
	ctx := context.Background()

	engagementID := uuid.New()
	disputeID := uuid.New()
	notes := "возврат средств согласован"

	disputeRepo.On("GetByID", ctx, disputeID).Return(&models.Dispute{
		ID:           disputeID,
		EngagementID: engagementID,
		Status:       models.DisputeStatusOpen,
	}, nil)
	engagements.On("GetByID", ctx, engagementID).Return(&models.Engagement{
		ID:           engagementID,
		BusinessID:   uuid.New(),
		FreelancerID: uuid.New(),
	}, nil)
	disputeRepo.On("UpdateStatus", ctx, disputeID, models.DisputeStatusResolved, &notes).Return(nil)

	_, err := svc.ResolveDispute(ctx, models.Actor{UserID: uuid.New(), IsAdmin: true}, disputeID, models.DisputeStatusResolved, &notes)

	assert.NoError(t, err)
	disputeRepo.AssertExpectations(t)
}

func TestDisputeService_ResolveDispute_NotAdmin(t *testing.T) {
	svc := NewDisputeService(new(mockDisputeRepo), new(mockEngagementGetter), noopNotifier{})
	ctx := context.Background()

	notes := "решено"
	_, err := svc.ResolveDispute(ctx, models.Actor{UserID: uuid.New()}, uuid.New(), models.DisputeStatusResolved, &notes)

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestDisputeService_ResolveDispute_ResolvedRequiresNotes(t *testing.T) {
	svc := NewDisputeService(new(mockDisputeRepo), new(mockEngagementGetter), noopNotifier{})
	ctx := context.Background()

	_, err := svc.ResolveDispute(ctx, models.Actor{UserID: uuid.New(), IsAdmin: true}, uuid.New(), models.DisputeStatusResolved, nil)

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodeValidation, appErr.Code)
	assert.Contains(t, appErr.Details, "resolution_notes")
}
