package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/repository"
)

type UseCase struct {
	notifications repository.NotificationRepository
	logger        *zap.Logger
}

func New(notifications repository.NotificationRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{notifications: notifications, logger: logger}
}

// ListNotifications returns the user's notifications newest first.
func (uc *UseCase) ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	items, err := uc.notifications.ListByUser(ctx, userID, limit)
	if err != nil {
		uc.logger.Error("error fetching notifications", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return items, nil
}
