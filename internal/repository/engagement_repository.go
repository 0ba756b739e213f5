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
	ErrEngagementNotFound = errors.New("engagement not found")
	// ErrEngagementExists возвращается, когда по ставке уже создано
	// сотрудничество. Единственный источник — уникальное ограничение
	// engagements.bid_id, оно же сериализует конкурентные принятия.
	ErrEngagementExists  = errors.New("engagement already exists for bid")
	ErrMilestoneNotFound = errors.New("milestone not found")
)

// EngagementRepository отвечает за сотрудничества, этапы и результаты работ.
type EngagementRepository struct {
	db *sqlx.DB
}

func NewEngagementRepository(db *sqlx.DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// CreateFromBid атомарно создаёт сотрудничество из принятой ставки:
// запись сотрудничества, этапы из шаблонов проекта и перевод ставки
// в статус ACCEPTED выполняются одной транзакцией. Если сотрудничество
// по этой ставке уже есть, возвращается ErrEngagementExists, а данные
// в базе не меняются.
func (r *EngagementRepository) CreateFromBid(ctx context.Context, engagement *models.Engagement, templates []models.ProjectMilestone) error {
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO engagements (bid_id, project_id, business_id, freelancer_id, status, payment_status)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRowxContext(ctx, query,
			engagement.BidID, engagement.ProjectID, engagement.BusinessID,
			engagement.FreelancerID, engagement.Status, engagement.PaymentStatus,
		).Scan(&engagement.ID, &engagement.CreatedAt, &engagement.UpdatedAt)
		if err != nil {
			return fmt.Errorf("engagement repository: create %w", err)
		}

		if len(templates) > 0 {
			inserter := common.NewBatchInserter(tx,
				`INSERT INTO milestones (engagement_id, title, description, amount, sequence_order, status)`,
				6, 100)
			for _, t := range templates {
				err := inserter.Add(ctx, engagement.ID, t.Title, t.Description, t.Amount, t.SequenceOrder, models.MilestoneStatusPending)
				if err != nil {
					return fmt.Errorf("engagement repository: insert milestone %w", err)
				}
			}
			if err := inserter.Flush(ctx); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE bids SET status = $1, updated_at = NOW() WHERE id = $2`,
			models.BidStatusAccepted, engagement.BidID)
		if err != nil {
			return fmt.Errorf("engagement repository: accept bid %w", err)
		}
		return nil
	})
	if err != nil {
		if common.IsUniqueViolation(err, "engagements_bid_id_key") {
			return ErrEngagementExists
		}
		return err
	}

	engagement.Milestones, err = r.getMilestones(ctx, engagement.ID)
	return err
}

// GetByID возвращает сотрудничество вместе с этапами.
func (r *EngagementRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Engagement, error) {
	engagement, err := common.GetByID[models.Engagement](ctx, r.db, "engagements", id, ErrEngagementNotFound)
	if err != nil {
		return nil, err
	}
	engagement.Milestones, err = r.getMilestones(ctx, id)
	if err != nil {
		return nil, err
	}
	return engagement, nil
}

// GetByBidID возвращает сотрудничество, созданное из ставки, если оно есть.
func (r *EngagementRepository) GetByBidID(ctx context.Context, bidID uuid.UUID) (*models.Engagement, error) {
	engagement, err := common.GetByField[models.Engagement](ctx, r.db, "engagements", "bid_id", bidID, ErrEngagementNotFound)
	if err != nil {
		return nil, err
	}
	engagement.Milestones, err = r.getMilestones(ctx, engagement.ID)
	if err != nil {
		return nil, err
	}
	return engagement, nil
}

func (r *EngagementRepository) getMilestones(ctx context.Context, engagementID uuid.UUID) ([]models.Milestone, error) {
	var milestones []models.Milestone
	query := `SELECT * FROM milestones WHERE engagement_id = $1 ORDER BY sequence_order`
	if err := r.db.SelectContext(ctx, &milestones, query, engagementID); err != nil {
		return nil, fmt.Errorf("engagement repository: get milestones %w", err)
	}
	return milestones, nil
}

// ListForUser возвращает сотрудничества пользователя с названием проекта
// и email второй стороны.
func (r *EngagementRepository) ListForUser(ctx context.Context, userID uuid.UUID, status string) ([]models.EngagementSummary, error) {
	query := `
		SELECT e.*,
		       p.title AS project_title,
		       bu.email AS business_email,
		       fu.email AS freelancer_email
		FROM engagements e
		JOIN projects p ON p.id = e.project_id
		JOIN users bu ON bu.id = e.business_id
		JOIN users fu ON fu.id = e.freelancer_id
		WHERE (e.business_id = $1 OR e.freelancer_id = $1)
	`
	args := []interface{}{userID}
	if status != "" {
		query += " AND e.status = $2"
		args = append(args, status)
	}
	query += " ORDER BY e.created_at DESC"

	var summaries []models.EngagementSummary
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, fmt.Errorf("engagement repository: list for user %w", err)
	}
	return summaries, nil
}

// UpdateStatus переводит сотрудничество в новый статус.
func (r *EngagementRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE engagements SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("engagement repository: update status %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrEngagementNotFound
	}
	return nil
}

// UpdatePaymentStatus обновляет статус оплаты и заметки.
func (r *EngagementRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, paymentStatus string, notes *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE engagements SET payment_status = $1, payment_notes = $2, updated_at = NOW() WHERE id = $3`,
		paymentStatus, notes, id)
	if err != nil {
		return fmt.Errorf("engagement repository: update payment status %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrEngagementNotFound
	}
	return nil
}

// MarkFreelancerReceived отмечает подтверждение получения оплаты фрилансером.
func (r *EngagementRepository) MarkFreelancerReceived(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE engagements
		SET freelancer_marked_received = TRUE,
		    freelancer_marked_received_at = NOW(),
		    updated_at = NOW()
		WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("engagement repository: mark received %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrEngagementNotFound
	}
	return nil
}

// GetMilestone возвращает этап по идентификатору.
func (r *EngagementRepository) GetMilestone(ctx context.Context, id uuid.UUID) (*models.Milestone, error) {
	return common.GetByID[models.Milestone](ctx, r.db, "milestones", id, ErrMilestoneNotFound)
}

// UpdateMilestoneStatus переводит этап в новый статус.
func (r *EngagementRepository) UpdateMilestoneStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE milestones SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("engagement repository: update milestone status %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrMilestoneNotFound
	}
	return nil
}

// UpdateMilestone обновляет описание этапа.
func (r *EngagementRepository) UpdateMilestone(ctx context.Context, m *models.Milestone) error {
	query := `
		UPDATE milestones
		SET title = $1, description = $2, amount = $3, due_date = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		m.Title, m.Description, m.Amount, m.DueDate, m.ID,
	).Scan(&m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMilestoneNotFound
		}
		return fmt.Errorf("engagement repository: update milestone %w", err)
	}
	return nil
}

// AppendMilestones добавляет новые этапы к сотрудничеству одной транзакцией.
func (r *EngagementRepository) AppendMilestones(ctx context.Context, engagementID uuid.UUID, inputs []models.MilestoneInput) ([]models.Milestone, error) {
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, in := range inputs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO milestones (engagement_id, title, description, amount, due_date, sequence_order, status)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, engagementID, in.Title, in.Description, in.Amount, in.DueDate, in.SequenceOrder, models.MilestoneStatusPending)
			if err != nil {
				return fmt.Errorf("engagement repository: append milestone %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.getMilestones(ctx, engagementID)
}

// AddDeliverable сохраняет результат работы по этапу.
func (r *EngagementRepository) AddDeliverable(ctx context.Context, d *models.MilestoneDeliverable) error {
	query := `
		INSERT INTO milestone_deliverables (milestone_id, file_url, notes)
		VALUES ($1, $2, $3)
		RETURNING id, submitted_at
	`
	err := r.db.QueryRowxContext(ctx, query, d.MilestoneID, d.FileURL, d.Notes).
		Scan(&d.ID, &d.SubmittedAt)
	if err != nil {
		return fmt.Errorf("engagement repository: add deliverable %w", err)
	}
	return nil
}

// ListDeliverables возвращает результаты работ по этапу.
func (r *EngagementRepository) ListDeliverables(ctx context.Context, milestoneID uuid.UUID) ([]models.MilestoneDeliverable, error) {
	var deliverables []models.MilestoneDeliverable
	query := `SELECT * FROM milestone_deliverables WHERE milestone_id = $1 ORDER BY submitted_at`
	if err := r.db.SelectContext(ctx, &deliverables, query, milestoneID); err != nil {
		return nil, fmt.Errorf("engagement repository: list deliverables %w", err)
	}
	return deliverables, nil
}
