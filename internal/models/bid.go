package models

import (
	"time"

	"github.com/google/uuid"
)

// Bid представляет ставку фрилансера на проект.
type Bid struct {
	ID                   uuid.UUID `db:"id" json:"id"`
	ProjectID            uuid.UUID `db:"project_id" json:"project_id"`
	FreelancerID         uuid.UUID `db:"freelancer_id" json:"freelancer_id"`
	BidAmount            float64   `db:"bid_amount" json:"bid_amount"`
	BidType              string    `db:"bid_type" json:"bid_type"`
	ProposedTimelineDays int       `db:"proposed_timeline_days" json:"proposed_timeline_days"`
	CoverLetter          *string   `db:"cover_letter" json:"cover_letter,omitempty"`
	Status               string    `db:"status" json:"status"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// BidWithProject — ставка вместе с проектом и его шаблонами этапов.
// Используется при принятии ставки, чтобы не делать три запроса.
type BidWithProject struct {
	Bid        Bid
	Project    Project
	Milestones []ProjectMilestone
}
