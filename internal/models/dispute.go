package models

import (
	"time"

	"github.com/google/uuid"
)

// Dispute — спор, поднятый стороной сотрудничества.
// Разрешить спор может только администратор.
type Dispute struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	EngagementID    uuid.UUID  `db:"engagement_id" json:"engagement_id"`
	RaisedByID      uuid.UUID  `db:"raised_by_id" json:"raised_by_id"`
	ReasonCode      string     `db:"reason_code" json:"reason_code"`
	Description     string     `db:"description" json:"description"`
	Status          string     `db:"status" json:"status"`
	ResolutionNotes *string    `db:"resolution_notes" json:"resolution_notes,omitempty"`
	ResolvedAt      *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`

	Attachments []DisputeAttachment `json:"attachments,omitempty"`
}

// DisputeAttachment — файл, приложенный к спору.
type DisputeAttachment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	DisputeID   uuid.UUID `db:"dispute_id" json:"dispute_id"`
	FileURL     string    `db:"file_url" json:"file_url"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
