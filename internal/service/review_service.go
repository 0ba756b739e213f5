package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dkruglov/freemarket-backend/internal/models"
	"github.com/dkruglov/freemarket-backend/internal/pkg/apperror"
	"github.com/dkruglov/freemarket-backend/internal/repository"
)

// ReviewRepo описывает зависимости ReviewService от слоя хранилища.
type ReviewRepo interface {
	Create(ctx context.Context, review *models.Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	ListByEngagement(ctx context.Context, engagementID uuid.UUID) ([]models.Review, error)
	ListByReviewee(ctx context.Context, revieweeID uuid.UUID) ([]models.Review, error)
}

// EngagementRepoForReview описывает доступ к сотрудничествам при работе с отзывами.
type EngagementRepoForReview interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Engagement, error)
}

// ReviewService реализует отзывы по завершённым сотрудничествам.
type ReviewService struct {
	repo        ReviewRepo
	engagements EngagementRepoForReview
	notifier    Notifier
}

func NewReviewService(repo ReviewRepo, engagements EngagementRepoForReview, notifier Notifier) *ReviewService {
	return &ReviewService{repo: repo, engagements: engagements, notifier: notifier}
}

// CreateReviewInput содержит оценки и комментарий.
type CreateReviewInput struct {
	RatingOverall       int
	RatingQuality       int
	RatingCommunication int
	RatingTimeliness    int
	Comment             *string
}

// CanReviewEngagement возвращает сотрудничество, если пользователь может
// оставить отзыв: он участник, а сотрудничество завершено или отменено.
func (s *ReviewService) CanReviewEngagement(ctx context.Context, engagementID, reviewerID uuid.UUID) (*models.Engagement, error) {
	engagement, err := s.engagements.GetByID(ctx, engagementID)
	if err != nil {
		if errors.Is(err, repository.ErrEngagementNotFound) {
			return nil, apperror.ErrEngagementNotFound
		}
		return nil, err
	}

	if engagement.Status != models.EngagementStatusCompleted &&
		engagement.Status != models.EngagementStatusCancelled {
		return nil, nil
	}
	if !engagement.IsParticipant(reviewerID) {
		return nil, nil
	}
	return engagement, nil
}

// CreateReview оставляет отзыв о второй стороне сотрудничества.
// Повторный отзыв той же стороны отклоняется с конфликтом.
func (s *ReviewService) CreateReview(ctx context.Context, actor models.Actor, engagementID uuid.UUID, in CreateReviewInput) (*models.Review, error) {
	details := map[string]string{}
	for field, rating := range map[string]int{
		"rating_overall":       in.RatingOverall,
		"rating_quality":       in.RatingQuality,
		"rating_communication": in.RatingCommunication,
		"rating_timeliness":    in.RatingTimeliness,
	} {
		if rating < 1 || rating > 5 {
			details[field] = "оценка должна быть от 1 до 5"
		}
	}
	if len(details) > 0 {
		return nil, apperror.Validation("некорректные оценки", details)
	}

	engagement, err := s.CanReviewEngagement(ctx, engagementID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if engagement == nil {
		return nil, apperror.ErrForbidden
	}

	// Отзыв всегда адресован второй стороне.
	revieweeID := engagement.FreelancerID
	if actor.UserID == engagement.FreelancerID {
		revieweeID = engagement.BusinessID
	}

	review := &models.Review{
		EngagementID:        engagementID,
		ReviewerID:          actor.UserID,
		RevieweeID:          revieweeID,
		RatingOverall:       in.RatingOverall,
		RatingQuality:       in.RatingQuality,
		RatingCommunication: in.RatingCommunication,
		RatingTimeliness:    in.RatingTimeliness,
		Comment:             trimPtr(in.Comment),
	}

	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrReviewExists) {
			return nil, apperror.ErrReviewConflict
		}
		return nil, err
	}

	s.notifier.Notify(revieweeID, "review.created", map[string]interface{}{
		"review_id":     review.ID.String(),
		"engagement_id": engagementID.String(),
	})

	return review, nil
}

// ListEngagementReviews возвращает отзывы по сотрудничеству.
func (s *ReviewService) ListEngagementReviews(ctx context.Context, engagementID uuid.UUID) ([]models.Review, error) {
	if _, err := s.engagements.GetByID(ctx, engagementID); err != nil {
		if errors.Is(err, repository.ErrEngagementNotFound) {
			return nil, apperror.ErrEngagementNotFound
		}
		return nil, err
	}
	return s.repo.ListByEngagement(ctx, engagementID)
}

// ListUserReviews возвращает отзывы о пользователе.
func (s *ReviewService) ListUserReviews(ctx context.Context, userID uuid.UUID) ([]models.Review, error) {
	return s.repo.ListByReviewee(ctx, userID)
}
