package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dkruglov/freemarket-backend/internal/models"
	"github.com/dkruglov/freemarket-backend/internal/repository/common"
)

var (
	ErrBidNotFound = errors.New("bid not found")
	ErrBidExists   = errors.New("bid already submitted for project")
)

// BidRepository отвечает за ставки фрилансеров.
type BidRepository struct {
	db *sqlx.DB
}

func NewBidRepository(db *sqlx.DB) *BidRepository {
	return &BidRepository{db: db}
}

// Create сохраняет новую ставку. Повторная ставка на тот же проект
// перехватывается по уникальному ограничению (project_id, freelancer_id).
func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	query := `
		INSERT INTO bids (project_id, freelancer_id, bid_amount, bid_type, proposed_timeline_days, cover_letter, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		bid.ProjectID, bid.FreelancerID, bid.BidAmount, bid.BidType,
		bid.ProposedTimelineDays, bid.CoverLetter, bid.Status,
	).Scan(&bid.ID, &bid.CreatedAt, &bid.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err, "bids_project_id_freelancer_id_key") {
			return ErrBidExists
		}
		return fmt.Errorf("bid repository: create %w", err)
	}
	return nil
}

// GetByID возвращает ставку по идентификатору.
func (r *BidRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bid, error) {
	return common.GetByID[models.Bid](ctx, r.db, "bids", id, ErrBidNotFound)
}

// GetWithProject возвращает ставку вместе с проектом и шаблонами этапов.
// Используется при принятии ставки.
func (r *BidRepository) GetWithProject(ctx context.Context, id uuid.UUID) (*models.BidWithProject, error) {
	bid, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var project models.Project
	if err := r.db.GetContext(ctx, &project, `SELECT * FROM projects WHERE id = $1`, bid.ProjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("bid repository: get project %w", err)
	}

	var milestones []models.ProjectMilestone
	query := `SELECT * FROM project_milestones WHERE project_id = $1 ORDER BY sequence_order`
	if err := r.db.SelectContext(ctx, &milestones, query, bid.ProjectID); err != nil {
		return nil, fmt.Errorf("bid repository: get milestone templates %w", err)
	}

	return &models.BidWithProject{Bid: *bid, Project: project, Milestones: milestones}, nil
}

// ListByProject возвращает все ставки по проекту.
func (r *BidRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	query := `SELECT * FROM bids WHERE project_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &bids, query, projectID); err != nil {
		return nil, fmt.Errorf("bid repository: list by project %w", err)
	}
	return bids, nil
}

// ListByFreelancer возвращает все ставки фрилансера.
func (r *BidRepository) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]models.Bid, error) {
	var bids []models.Bid
	query := `SELECT * FROM bids WHERE freelancer_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &bids, query, freelancerID); err != nil {
		return nil, fmt.Errorf("bid repository: list by freelancer %w", err)
	}
	return bids, nil
}

// UpdateStatus переводит ставку в новый статус.
func (r *BidRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bids SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("bid repository: update status %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrBidNotFound
	}
	return nil
}

// Withdraw удаляет ставку фрилансера, пока она не принята.
func (r *BidRepository) Withdraw(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM bids WHERE id = $1 AND status <> $2`, id, models.BidStatusAccepted)
	if err != nil {
		return fmt.Errorf("bid repository: withdraw %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrBidNotFound
	}
	return nil
}
