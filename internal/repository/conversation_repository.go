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

var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository отвечает за переписки и сообщения.
type ConversationRepository struct {
	db *sqlx.DB
}

func NewConversationRepository(db *sqlx.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create сохраняет переписку вместе с участниками в одной транзакции.
func (r *ConversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO conversations (created_by_id, project_id, engagement_id)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`
		err := tx.QueryRowxContext(ctx, query, conv.CreatedByID, conv.ProjectID, conv.EngagementID).
			Scan(&conv.ID, &conv.CreatedAt)
		if err != nil {
			return fmt.Errorf("conversation repository: create %w", err)
		}

		for _, userID := range conv.ParticipantIDs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO conversation_participants (conversation_id, user_id)
				VALUES ($1, $2)
				ON CONFLICT DO NOTHING
			`, conv.ID, userID)
			if err != nil {
				return fmt.Errorf("conversation repository: add participant %w", err)
			}
		}
		return nil
	})
}

// GetByID возвращает переписку вместе с участниками.
func (r *ConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	conv, err := common.GetByID[models.Conversation](ctx, r.db, "conversations", id, ErrConversationNotFound)
	if err != nil {
		return nil, err
	}

	var participants []uuid.UUID
	query := `SELECT user_id FROM conversation_participants WHERE conversation_id = $1`
	if err := r.db.SelectContext(ctx, &participants, query, id); err != nil {
		return nil, fmt.Errorf("conversation repository: get participants %w", err)
	}
	conv.ParticipantIDs = participants
	return conv, nil
}

// ListForUser возвращает переписки, в которых участвует пользователь.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var conversations []models.Conversation
	query := `
		SELECT c.* FROM conversations c
		JOIN conversation_participants cp ON cp.conversation_id = c.id
		WHERE cp.user_id = $1
		ORDER BY c.created_at DESC
	`
	if err := r.db.SelectContext(ctx, &conversations, query, userID); err != nil {
		return nil, fmt.Errorf("conversation repository: list for user %w", err)
	}
	return conversations, nil
}

// IsParticipant проверяет участие пользователя в переписке.
func (r *ConversationRepository) IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (
		SELECT 1 FROM conversation_participants WHERE conversation_id = $1 AND user_id = $2
	)`
	if err := r.db.GetContext(ctx, &exists, query, conversationID, userID); err != nil {
		return false, fmt.Errorf("conversation repository: is participant %w", err)
	}
	return exists, nil
}

// CreateMessage сохраняет сообщение.
func (r *ConversationRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (conversation_id, sender_id, message_text, attachment_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		msg.ConversationID, msg.SenderID, msg.MessageText, msg.AttachmentURL,
	).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("conversation repository: create message %w", err)
	}
	return nil
}

// ListMessages возвращает сообщения переписки постранично,
// от старых к новым. Клиент забирает новые сообщения поллингом.
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	var messages []models.Message
	query := `
		SELECT * FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &messages, query, conversationID, limit, offset); err != nil {
		return nil, fmt.Errorf("conversation repository: list messages %w", err)
	}
	return messages, nil
}
