package models

import (
	"time"

	"github.com/google/uuid"
)

// Engagement описывает сотрудничество, созданное из принятой ставки.
// BusinessID и FreelancerID фиксируются при создании и не меняются.
type Engagement struct {
	ID                         uuid.UUID  `db:"id" json:"id"`
	BidID                      uuid.UUID  `db:"bid_id" json:"bid_id"`
	ProjectID                  uuid.UUID  `db:"project_id" json:"project_id"`
	BusinessID                 uuid.UUID  `db:"business_id" json:"business_id"`
	FreelancerID               uuid.UUID  `db:"freelancer_id" json:"freelancer_id"`
	Status                     string     `db:"status" json:"status"`
	PaymentStatus              string     `db:"payment_status" json:"payment_status"`
	PaymentNotes               *string    `db:"payment_notes" json:"payment_notes,omitempty"`
	FreelancerMarkedReceived   bool       `db:"freelancer_marked_received" json:"freelancer_marked_received"`
	FreelancerMarkedReceivedAt *time.Time `db:"freelancer_marked_received_at" json:"freelancer_marked_received_at,omitempty"`
	CreatedAt                  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                  time.Time  `db:"updated_at" json:"updated_at"`

	Milestones []Milestone `json:"milestones,omitempty"`
}

// IsParticipant проверяет, является ли пользователь стороной сотрудничества.
func (e *Engagement) IsParticipant(userID uuid.UUID) bool {
	return e.BusinessID == userID || e.FreelancerID == userID
}

// EngagementSummary — строка списка сотрудничеств с данными сторон.
type EngagementSummary struct {
	Engagement
	ProjectTitle    string `db:"project_title" json:"project_title"`
	BusinessEmail   string `db:"business_email" json:"business_email"`
	FreelancerEmail string `db:"freelancer_email" json:"freelancer_email"`
}

// Milestone — этап сотрудничества с собственным жизненным циклом.
type Milestone struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	EngagementID  uuid.UUID  `db:"engagement_id" json:"engagement_id"`
	Title         string     `db:"title" json:"title"`
	Description   *string    `db:"description" json:"description,omitempty"`
	Amount        float64    `db:"amount" json:"amount"`
	DueDate       *time.Time `db:"due_date" json:"due_date,omitempty"`
	SequenceOrder int        `db:"sequence_order" json:"sequence_order"`
	Status        string     `db:"status" json:"status"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// MilestoneDeliverable — результат работы, приложенный фрилансером к этапу.
// Записи только добавляются, история не переписывается.
type MilestoneDeliverable struct {
	ID          uuid.UUID `db:"id" json:"id"`
	MilestoneID uuid.UUID `db:"milestone_id" json:"milestone_id"`
	FileURL     string    `db:"file_url" json:"file_url"`
	Notes       *string   `db:"notes" json:"notes,omitempty"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
}

// MilestoneInput описывает данные для создания этапа.
// Используется и для шаблонов проекта, и для добавления этапов вручную.
type MilestoneInput struct {
	Title         string     `json:"title"`
	Description   *string    `json:"description,omitempty"`
	Amount        float64    `json:"amount"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	SequenceOrder int        `json:"sequence_order"`
}
