package repository

import (
	"context"
	"time"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/filter"
)

// TaskQuery selects the tasks visible to UserID under Filter, evaluated at Now.
type TaskQuery struct {
	Filter filter.Kind
	UserID string
	Now    time.Time
	Limit  int
	Offset int
}

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	// List returns matching tasks ordered by due date ascending.
	List(ctx context.Context, query TaskQuery) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	SetComplete(ctx context.Context, id string, complete bool) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}
