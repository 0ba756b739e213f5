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

var ErrDisputeNotFound = errors.New("dispute not found")

// DisputeRepository отвечает за споры и приложенные к ним файлы.
type DisputeRepository struct {
	db *sqlx.DB
}

func NewDisputeRepository(db *sqlx.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

// Create сохраняет новый спор.
func (r *DisputeRepository) Create(ctx context.Context, dispute *models.Dispute) error {
	query := `
		INSERT INTO disputes (engagement_id, raised_by_id, reason_code, description, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		dispute.EngagementID, dispute.RaisedByID, dispute.ReasonCode,
		dispute.Description, dispute.Status,
	).Scan(&dispute.ID, &dispute.CreatedAt)
	if err != nil {
		return fmt.Errorf("dispute repository: create %w", err)
	}
	return nil
}

// GetByID возвращает спор вместе с вложениями.
func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	dispute, err := common.GetByID[models.Dispute](ctx, r.db, "disputes", id, ErrDisputeNotFound)
	if err != nil {
		return nil, err
	}

	var attachments []models.DisputeAttachment
	query := `SELECT * FROM dispute_attachments WHERE dispute_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &attachments, query, id); err != nil {
		return nil, fmt.Errorf("dispute repository: get attachments %w", err)
	}
	dispute.Attachments = attachments
	return dispute, nil
}

// ListByEngagement возвращает споры по сотрудничеству.
func (r *DisputeRepository) ListByEngagement(ctx context.Context, engagementID uuid.UUID) ([]models.Dispute, error) {
	var disputes []models.Dispute
	query := `SELECT * FROM disputes WHERE engagement_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &disputes, query, engagementID); err != nil {
		return nil, fmt.Errorf("dispute repository: list by engagement %w", err)
	}
	return disputes, nil
}

// ListOpen возвращает нерешённые споры для панели администратора.
func (r *DisputeRepository) ListOpen(ctx context.Context) ([]models.Dispute, error) {
	var disputes []models.Dispute
	query := `SELECT * FROM disputes WHERE status <> $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &disputes, query, models.DisputeStatusResolved); err != nil {
		return nil, fmt.Errorf("dispute repository: list open %w", err)
	}
	return disputes, nil
}

// UpdateStatus переводит спор в новый статус. При RESOLVED фиксируются
// заметки и время разрешения.
func (r *DisputeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, resolutionNotes *string) error {
	var (
		res interface{ RowsAffected() (int64, error) }
		err error
	)
	if status == models.DisputeStatusResolved {
		res, err = r.db.ExecContext(ctx,
			`UPDATE disputes SET status = $1, resolution_notes = $2, resolved_at = NOW() WHERE id = $3`,
			status, resolutionNotes, id)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE disputes SET status = $1 WHERE id = $2`, status, id)
	}
	if err != nil {
		return fmt.Errorf("dispute repository: update status %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrDisputeNotFound
	}
	return nil
}

// AddAttachment сохраняет файл, приложенный к спору.
func (r *DisputeRepository) AddAttachment(ctx context.Context, a *models.DisputeAttachment) error {
	query := `
		INSERT INTO dispute_attachments (dispute_id, file_url, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, a.DisputeID, a.FileURL, a.Description).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("dispute repository: add attachment %w", err)
	}
	return nil
}
