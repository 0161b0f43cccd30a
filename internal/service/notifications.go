package service

import (
	"context"

	"go.uber.org/zap"

	"whogowin-client/internal/api"
	"whogowin-client/internal/domain"
)

// NotificationService consulta y marca el historial de notificaciones.
type NotificationService struct {
	logger *zap.Logger
	client *api.Client
}

func NewNotificationService(logger *zap.Logger, client *api.Client) *NotificationService {
	return &NotificationService{logger: logger, client: client}
}

// History lista las notificaciones del usuario.
func (s *NotificationService) History(ctx context.Context) ([]domain.Notification, error) {
	var notifications []domain.Notification
	if err := s.client.Get(ctx, "/notifications/history", &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead marca como leídas las notificaciones indicadas.
func (s *NotificationService) MarkRead(ctx context.Context, ids []string) error {
	body := map[string]any{
		"notification_ids": ids,
		"read":             true,
	}
	if err := s.client.Put(ctx, "/notifications/mark-read", body, nil); err != nil {
		return err
	}
	s.logger.Info("notifications marked read", zap.Int("count", len(ids)))
	return nil
}

// SendTest pide al backend una notificación de prueba.
func (s *NotificationService) SendTest(ctx context.Context) error {
	if err := s.client.Post(ctx, "/notifications/send-test", nil, nil); err != nil {
		return err
	}
	s.logger.Info("test notification requested")
	return nil
}
