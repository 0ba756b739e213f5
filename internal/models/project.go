package models

import (
	"time"

	"github.com/google/uuid"
)

// Project описывает проект, размещённый компанией.
type Project struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	BusinessID  uuid.UUID  `db:"business_id" json:"business_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Category    *string    `db:"category" json:"category,omitempty"`
	BudgetMin   *float64   `db:"budget_min" json:"budget_min,omitempty"`
	BudgetMax   *float64   `db:"budget_max" json:"budget_max,omitempty"`
	Status      string     `db:"status" json:"status"`
	DeadlineAt  *time.Time `db:"deadline_at" json:"deadline_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`

	Milestones []ProjectMilestone `json:"milestones,omitempty"`
}

// ProjectMilestone — шаблон этапа, заданный при создании проекта.
// При принятии ставки из шаблонов создаются этапы сотрудничества.
type ProjectMilestone struct {
	ID            uuid.UUID `db:"id" json:"id"`
	ProjectID     uuid.UUID `db:"project_id" json:"project_id"`
	Title         string    `db:"title" json:"title"`
	Description   *string   `db:"description" json:"description,omitempty"`
	Amount        float64   `db:"amount" json:"amount"`
	SequenceOrder int       `db:"sequence_order" json:"sequence_order"`
}
