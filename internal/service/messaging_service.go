package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/dkruglov/freemarket-backend/internal/models"
	"github.com/dkruglov/freemarket-backend/internal/pkg/apperror"
	"github.com/dkruglov/freemarket-backend/internal/repository"
)

// ConversationRepo описывает зависимости MessagingService от слоя хранилища.
type ConversationRepo interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error)
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error)
}

// MessagingService реализует переписки. Доставка поллингом: клиент
// периодически запрашивает новые сообщения, push не используется.
type MessagingService struct {
	repo     ConversationRepo
	notifier Notifier
}

func NewMessagingService(repo ConversationRepo, notifier Notifier) *MessagingService {
	return &MessagingService{repo: repo, notifier: notifier}
}

// CreateConversationInput содержит данные новой переписки.
type CreateConversationInput struct {
	ParticipantIDs []uuid.UUID
	ProjectID      *uuid.UUID
	EngagementID   *uuid.UUID
}

// CreateConversation создаёт переписку. Создатель включается в участники.
func (s *MessagingService) CreateConversation(ctx context.Context, actor models.Actor, in CreateConversationInput) (*models.Conversation, error) {
	participants := map[uuid.UUID]struct{}{actor.UserID: {}}
	for _, id := range in.ParticipantIDs {
		participants[id] = struct{}{}
	}
	if len(participants) < 2 {
		return nil, apperror.Validation("некорректные данные переписки", map[string]string{
			"participant_ids": "нужен хотя бы один собеседник",
		})
	}

	conv := &models.Conversation{
		CreatedByID:  actor.UserID,
		ProjectID:    in.ProjectID,
		EngagementID: in.EngagementID,
	}
	for id := range participants {
		conv.ParticipantIDs = append(conv.ParticipantIDs, id)
	}

	if err := s.repo.Create(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// GetConversation возвращает переписку её участнику.
func (s *MessagingService) GetConversation(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.Conversation, error) {
	conv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrConversationNotFound) {
			return nil, apperror.New(apperror.ErrCodeNotFound, "переписка не найдена")
		}
		return nil, err
	}

	ok, err := s.repo.IsParticipant(ctx, id, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.ErrForbidden
	}
	return conv, nil
}

// ListMyConversations возвращает переписки пользователя.
func (s *MessagingService) ListMyConversations(ctx context.Context, actor models.Actor) ([]models.Conversation, error) {
	return s.repo.ListForUser(ctx, actor.UserID)
}

// SendMessage отправляет сообщение в переписку.
func (s *MessagingService) SendMessage(ctx context.Context, actor models.Actor, conversationID uuid.UUID, text string, attachmentURL *string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" && (attachmentURL == nil || strings.TrimSpace(*attachmentURL) == "") {
		return nil, apperror.Validation("некорректное сообщение", map[string]string{
			"message_text": "сообщение не может быть пустым",
		})
	}

	conv, err := s.GetConversation(ctx, actor, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: conversationID,
		SenderID:       actor.UserID,
		MessageText:    strings.TrimSpace(text),
		AttachmentURL:  trimPtr(attachmentURL),
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	for _, participantID := range conv.ParticipantIDs {
		if participantID == actor.UserID {
			continue
		}
		s.notifier.Notify(participantID, "message.created", map[string]interface{}{
			"conversation_id": conversationID.String(),
			"message_id":      msg.ID.String(),
		})
	}

	return msg, nil
}

// ListMessages возвращает сообщения переписки, старые первыми.
func (s *MessagingService) ListMessages(ctx context.Context, actor models.Actor, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	if _, err := s.GetConversation(ctx, actor, conversationID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListMessages(ctx, conversationID, limit, offset)
}
