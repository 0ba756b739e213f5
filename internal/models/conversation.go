package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation — переписка между пользователями, опционально привязанная
// к проекту или сотрудничеству.
type Conversation struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	CreatedByID  uuid.UUID  `db:"created_by_id" json:"created_by_id"`
	ProjectID    *uuid.UUID `db:"project_id" json:"project_id,omitempty"`
	EngagementID *uuid.UUID `db:"engagement_id" json:"engagement_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`

	ParticipantIDs []uuid.UUID `json:"participant_ids,omitempty"`
}

// Message — сообщение в переписке. Доставка поллингом, без push.
type Message struct {
	ID             uuid.UUID `db:"id" json:"id"`
	ConversationID uuid.UUID `db:"conversation_id" json:"conversation_id"`
	SenderID       uuid.UUID `db:"sender_id" json:"sender_id"`
	MessageText    string    `db:"message_text" json:"message_text"`
	AttachmentURL  *string   `db:"attachment_url" json:"attachment_url,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
