package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dkruglov/freemarket-backend/internal/http/middleware"
	"github.com/dkruglov/freemarket-backend/internal/models"
	"github.com/dkruglov/freemarket-backend/internal/repository"
	"github.com/dkruglov/freemarket-backend/internal/service"
)

// stubEngagementStore хранит сотрудничества в памяти и повторяет поведение
// уникального ограничения по bid_id.
type stubEngagementStore struct {
	byBidID map[uuid.UUID]*models.Engagement
}

func newStubEngagementStore() *stubEngagementStore {
	return &stubEngagementStore{byBidID: map[uuid.UUID]*models.Engagement{}}
}

func (s *stubEngagementStore) CreateFromBid(ctx context.Context, engagement *models.Engagement, templates []models.ProjectMilestone) error {
	if _, ok := s.byBidID[engagement.BidID]; ok {
		return repository.ErrEngagementExists
	}
	engagement.ID = uuid.New()
	s.byBidID[engagement.BidID] = engagement
	return nil
}

func (s *stubEngagementStore) GetByBidID(ctx context.Context, bidID uuid.UUID) (*models.Engagement, error) {
	if e, ok := s.byBidID[bidID]; ok {
		return e, nil
	}
	return nil, repository.ErrEngagementNotFound
}

func (s *stubEngagementStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Engagement, error) {
	for _, e := range s.byBidID {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, repository.ErrEngagementNotFound
}

func (s *stubEngagementStore) ListForUser(ctx context.Context, userID uuid.UUID, status string) ([]models.EngagementSummary, error) {
	return nil, nil
}

func (s *stubEngagementStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return nil
}

func (s *stubEngagementStore) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string, notes *string) error {
	return nil
}

func (s *stubEngagementStore) MarkFreelancerReceived(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (s *stubEngagementStore) GetMilestone(ctx context.Context, id uuid.UUID) (*models.Milestone, error) {
	return nil, repository.ErrMilestoneNotFound
}

func (s *stubEngagementStore) UpdateMilestoneStatus(ctx context.Context, id uuid.UUID, status string) error {
	return nil
}

func (s *stubEngagementStore) UpdateMilestone(ctx context.Context, m *models.Milestone) error {
	return nil
}

func (s *stubEngagementStore) AppendMilestones(ctx context.Context, engagementID uuid.UUID, inputs []models.MilestoneInput) ([]models.Milestone, error) {
	return nil, nil
}

func (s *stubEngagementStore) AddDeliverable(ctx context.Context, d *models.MilestoneDeliverable) error {
	return nil
}

func (s *stubEngagementStore) ListDeliverables(ctx context.Context, milestoneID uuid.UUID) ([]models.MilestoneDeliverable, error) {
	return nil, nil
}

type stubBidStore struct {
	bid *models.BidWithProject
}

func (s *stubBidStore) GetWithProject(ctx context.Context, id uuid.UUID) (*models.BidWithProject, error) {
	if s.bid == nil || s.bid.Bid.ID != id {
		return nil, repository.ErrBidNotFound
	}
	return s.bid, nil
}

func (s *stubBidStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	s.bid.Bid.Status = status
	return nil
}

type stubNotifier struct{}

func (stubNotifier) Notify(userID uuid.UUID, eventKind string, payload map[string]interface{}) {}

func acceptBidRouter(h *BidHandler, actor *models.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if actor != nil {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextActorKey, *actor)
			c.Next()
		})
	}
	r.POST("/bids/:id/accept", h.AcceptBid)
	return r
}

func TestBidHandler_AcceptBid_Unauthorized(t *testing.T) {
	h := NewBidHandler(nil, nil)
	r := acceptBidRouter(h, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bids/"+uuid.NewString()+"/accept", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBidHandler_AcceptBid_InvalidUUID(t *testing.T) {
	h := NewBidHandler(nil, nil)
	actor := models.Actor{UserID: uuid.New(), Role: models.RoleBusiness}
	r := acceptBidRouter(h, &actor)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bids/not-a-uuid/accept", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBidHandler_AcceptBid_CreatedThenIdempotent(t *testing.T) {
	businessID := uuid.New()
	projectID := uuid.New()
	bidID := uuid.New()

	bids := &stubBidStore{bid: &models.BidWithProject{
		Bid: models.Bid{
			ID:           bidID,
			ProjectID:    projectID,
			FreelancerID: uuid.New(),
			Status:       models.BidStatusSubmitted,
		},
		Project: models.Project{
			ID:         projectID,
			BusinessID: businessID,
			Status:     models.ProjectStatusOpen,
		},
	}}
	engagements := service.NewEngagementService(newStubEngagementStore(), bids, stubNotifier{})

	h := NewBidHandler(nil, engagements)
	actor := models.Actor{UserID: businessID, Role: models.RoleBusiness}
	r := acceptBidRouter(h, &actor)

	// Первое принятие создаёт сотрудничество.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bids/"+bidID.String()+"/accept", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"created":true`)
	assert.Equal(t, models.BidStatusAccepted, bids.bid.Bid.Status)

	// Повтор возвращает то же сотрудничество без создания нового.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/bids/"+bidID.String()+"/accept", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"created":false`)
}

func TestBidHandler_AcceptBid_ForeignProject(t *testing.T) {
	bidID := uuid.New()
	projectID := uuid.New()
	bids := &stubBidStore{bid: &models.BidWithProject{
		Bid:     models.Bid{ID: bidID, ProjectID: projectID, Status: models.BidStatusSubmitted},
		Project: models.Project{ID: projectID, BusinessID: uuid.New(), Status: models.ProjectStatusOpen},
	}}
	engagements := service.NewEngagementService(newStubEngagementStore(), bids, stubNotifier{})

	h := NewBidHandler(nil, engagements)
	actor := models.Actor{UserID: uuid.New(), Role: models.RoleBusiness}
	r := acceptBidRouter(h, &actor)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bids/"+bidID.String()+"/accept", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBidHandler_AcceptBid_BidNotFound(t *testing.T) {
	engagements := service.NewEngagementService(newStubEngagementStore(), &stubBidStore{}, stubNotifier{})

	h := NewBidHandler(nil, engagements)
	actor := models.Actor{UserID: uuid.New(), Role: models.RoleBusiness}
	r := acceptBidRouter(h, &actor)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bids/"+uuid.NewString()+"/accept", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
