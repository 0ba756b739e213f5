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

var ErrProjectNotFound = errors.New("project not found")

// ProjectFilter — параметры выборки списка проектов.
type ProjectFilter struct {
	Status     string
	Category   string
	BusinessID *uuid.UUID
	Limit      int
	Offset     int
}

// ProjectRepository отвечает за проекты и шаблоны этапов.
type ProjectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create сохраняет проект вместе с шаблонами этапов в одной транзакции.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO projects (business_id, title, description, category, budget_min, budget_max, status, deadline_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRowxContext(ctx, query,
			project.BusinessID, project.Title, project.Description, project.Category,
			project.BudgetMin, project.BudgetMax, project.Status, project.DeadlineAt,
		).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
		if err != nil {
			return fmt.Errorf("project repository: create %w", err)
		}

		if len(project.Milestones) == 0 {
			return nil
		}

		inserter := common.NewBatchInserter(tx,
			`INSERT INTO project_milestones (project_id, title, description, amount, sequence_order)`,
			5, 100)
		for i := range project.Milestones {
			m := &project.Milestones[i]
			m.ProjectID = project.ID
			if err := inserter.Add(ctx, m.ProjectID, m.Title, m.Description, m.Amount, m.SequenceOrder); err != nil {
				return fmt.Errorf("project repository: insert milestone template %w", err)
			}
		}
		return inserter.Flush(ctx)
	})
}

// GetByID возвращает проект с шаблонами этапов.
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := common.GetByID[models.Project](ctx, r.db, "projects", id, ErrProjectNotFound)
	if err != nil {
		return nil, err
	}

	milestones, err := r.getMilestoneTemplates(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Milestones = milestones
	return project, nil
}

func (r *ProjectRepository) getMilestoneTemplates(ctx context.Context, projectID uuid.UUID) ([]models.ProjectMilestone, error) {
	var milestones []models.ProjectMilestone
	query := `SELECT * FROM project_milestones WHERE project_id = $1 ORDER BY sequence_order`
	if err := r.db.SelectContext(ctx, &milestones, query, projectID); err != nil {
		return nil, fmt.Errorf("project repository: get milestone templates %w", err)
	}
	return milestones, nil
}

// List возвращает проекты по фильтру вместе с общим количеством.
func (r *ProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]models.Project, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	argNum := 1

	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, filter.Status)
		argNum++
	}
	if filter.Category != "" {
		where += fmt.Sprintf(" AND category = $%d", argNum)
		args = append(args, filter.Category)
		argNum++
	}
	if filter.BusinessID != nil {
		where += fmt.Sprintf(" AND business_id = $%d", argNum)
		args = append(args, *filter.BusinessID)
		argNum++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM projects " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("project repository: count %w", err)
	}

	query := fmt.Sprintf(
		"SELECT * FROM projects %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, argNum, argNum+1,
	)
	args = append(args, filter.Limit, filter.Offset)

	var projects []models.Project
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("project repository: list %w", err)
	}
	return projects, total, nil
}

// Update обновляет редактируемые поля проекта.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects
		SET title = $1, description = $2, category = $3, budget_min = $4,
		    budget_max = $5, deadline_at = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		project.Title, project.Description, project.Category,
		project.BudgetMin, project.BudgetMax, project.DeadlineAt, project.ID,
	).Scan(&project.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("project repository: update %w", err)
	}
	return nil
}

// UpdateStatus переводит проект в новый статус.
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("project repository: update status %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrProjectNotFound
	}
	return nil
}
