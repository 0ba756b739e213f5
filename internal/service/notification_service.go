package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/dkruglov/freemarket-backend/internal/goroutine"
	"github.com/dkruglov/freemarket-backend/internal/logger"
	"github.com/dkruglov/freemarket-backend/internal/models"
)

// NotificationRepo описывает зависимости NotificationService от слоя хранилища.
type NotificationRepo interface {
	Create(ctx context.Context, userID uuid.UUID, payload json.RawMessage) error
	ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// NotificationService сохраняет уведомления и отдаёт их поллингом.
// Запись идёт в фоне: ошибка доставки не ломает вызвавшую операцию.
type NotificationService struct {
	repo NotificationRepo
}

func NewNotificationService(repo NotificationRepo) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify сохраняет уведомление в фоновой горутине.
func (s *NotificationService) Notify(userID uuid.UUID, eventKind string, payload map[string]interface{}) {
	body := map[string]interface{}{"event": eventKind}
	for k, v := range payload {
		body[k] = v
	}

	raw, err := json.Marshal(body)
	if err != nil {
		logger.Log.WithError(err).Warn("notification: не удалось сериализовать payload")
		return
	}

	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.repo.Create(ctx, userID, raw); err != nil {
			logger.Log.WithError(err).WithField("user_id", userID).
				Warn("notification: не удалось сохранить уведомление")
		}
	})
}

// ListMyNotifications возвращает уведомления пользователя, новые первыми.
func (s *NotificationService) ListMyNotifications(ctx context.Context, actor models.Actor, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListForUser(ctx, actor.UserID, unreadOnly, limit, offset)
}

// MarkRead отмечает уведомление прочитанным.
func (s *NotificationService) MarkRead(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, actor.UserID)
}

// MarkAllRead отмечает все уведомления пользователя прочитанными.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor models.Actor) error {
	return s.repo.MarkAllRead(ctx, actor.UserID)
}

// CountUnread возвращает число непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, actor models.Actor) (int, error) {
	return s.repo.CountUnread(ctx, actor.UserID)
}
