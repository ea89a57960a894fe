package repository

import (
	"context"

	"github.com/fastygo/taskflow/domain"
)

type NotificationRepository interface {
	// ListByUser returns the user's notifications newest first.
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
	Create(ctx context.Context, notification *domain.Notification) (*domain.Notification, error)
}
