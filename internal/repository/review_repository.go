package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dkruglov/freemarket-backend/internal/models"
	"github.com/dkruglov/freemarket-backend/internal/repository/common"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	// ErrReviewExists возвращается при повторном отзыве той же стороны
	// по тому же сотрудничеству. Источник — уникальное ограничение
	// (engagement_id, reviewer_id).
	ErrReviewExists = errors.New("review already submitted")
)

// ReviewRepository отвечает за отзывы.
type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create сохраняет отзыв.
func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (engagement_id, reviewer_id, reviewee_id,
			rating_overall, rating_quality, rating_communication, rating_timeliness, comment)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		review.EngagementID, review.ReviewerID, review.RevieweeID,
		review.RatingOverall, review.RatingQuality, review.RatingCommunication,
		review.RatingTimeliness, review.Comment,
	).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		if common.IsUniqueViolation(err, "reviews_engagement_id_reviewer_id_key") {
			return ErrReviewExists
		}
		return fmt.Errorf("review repository: create %w", err)
	}
	return nil
}

// GetByID возвращает отзыв по идентификатору.
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	return common.GetByID[models.Review](ctx, r.db, "reviews", id, ErrReviewNotFound)
}

// ListByEngagement возвращает отзывы по сотрудничеству.
func (r *ReviewRepository) ListByEngagement(ctx context.Context, engagementID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	query := `SELECT * FROM reviews WHERE engagement_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &reviews, query, engagementID); err != nil {
		return nil, fmt.Errorf("review repository: list by engagement %w", err)
	}
	return reviews, nil
}

// ListByReviewee возвращает отзывы о пользователе.
func (r *ReviewRepository) ListByReviewee(ctx context.Context, revieweeID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	query := `SELECT * FROM reviews WHERE reviewee_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &reviews, query, revieweeID); err != nil {
		return nil, fmt.Errorf("review repository: list by reviewee %w", err)
	}
	return reviews, nil
}
