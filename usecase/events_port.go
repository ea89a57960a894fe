package usecase

import (
	"context"

	"github.com/fastygo/taskflow/domain"
)

// EventPublisher announces committed inserts to realtime subscribers.
// Implementations must not roll back or retry the row write itself.
type EventPublisher interface {
	TaskInserted(ctx context.Context, task domain.Task) error
	NotificationInserted(ctx context.Context, notification domain.Notification) error
}
