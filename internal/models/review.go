package models

import (
	"time"

	"github.com/google/uuid"
)

// Review — отзыв участника о второй стороне завершённого сотрудничества.
// На пару (engagement, reviewer) допускается не более одного отзыва.
type Review struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	EngagementID        uuid.UUID `db:"engagement_id" json:"engagement_id"`
	ReviewerID          uuid.UUID `db:"reviewer_id" json:"reviewer_id"`
	RevieweeID          uuid.UUID `db:"reviewee_id" json:"reviewee_id"`
	RatingOverall       int       `db:"rating_overall" json:"rating_overall"`
	RatingQuality       int       `db:"rating_quality" json:"rating_quality"`
	RatingCommunication int       `db:"rating_communication" json:"rating_communication"`
	RatingTimeliness    int       `db:"rating_timeliness" json:"rating_timeliness"`
	Comment             *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}
