package task

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/filter"
	"github.com/fastygo/taskflow/repository"
	"github.com/fastygo/taskflow/usecase"
)

// CreateInput carries the fields a user supplies for a new task.
type CreateInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	AssignedTo  string
	CreatedBy   string
}

// Created is the outcome of CreateTask. NotifyErr is set when the task was
// stored but the assignee notification could not be.
type Created struct {
	Task         *domain.Task
	Notification *domain.Notification
	NotifyErr    error
}

type UseCase struct {
	tasks         repository.TaskRepository
	notifications repository.NotificationRepository
	events        usecase.EventPublisher
	logger        *zap.Logger
}

func New(
	tasks repository.TaskRepository,
	notifications repository.NotificationRepository,
	events usecase.EventPublisher,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:         tasks,
		notifications: notifications,
		events:        events,
		logger:        logger,
	}
}

func (uc *UseCase) ListTasks(ctx context.Context, query repository.TaskQuery) ([]domain.Task, error) {
	if query.Filter == "" {
		query.Filter = filter.All
	}
	if !query.Filter.Valid() {
		return nil, domain.ErrInvalidFilter
	}
	if query.Now.IsZero() {
		query.Now = time.Now()
	}
	tasks, err := uc.tasks.List(ctx, query)
	if err != nil {
		uc.logger.Error("error fetching tasks", zap.String("filter", string(query.Filter)), zap.Error(err))
		return nil, err
	}
	return tasks, nil
}

func (uc *UseCase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, id)
}

// CreateTask validates the input locally, stores the task and, when someone
// other than the creator is the assignee, stores one notification for them.
func (uc *UseCase) CreateTask(ctx context.Context, in CreateInput) (*Created, error) {
	task := &domain.Task{
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		DueDate:     in.DueDate,
		AssignedTo:  strings.TrimSpace(in.AssignedTo),
		CreatedBy:   in.CreatedBy,
		IsComplete:  false,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}

	stored, err := uc.tasks.Create(ctx, task)
	if err != nil {
		uc.logger.Error("error adding task", zap.Error(err))
		return nil, err
	}
	uc.announceTask(ctx, *stored)

	result := &Created{Task: stored}
	if !stored.NeedsAssignmentNotice() {
		return result, nil
	}

	n, err := uc.notifications.Create(ctx, domain.AssignmentNotification(stored))
	if err != nil {
		uc.logger.Error("error notifying assignee",
			zap.String("task_id", stored.ID),
			zap.String("assigned_to", stored.AssignedTo),
			zap.Error(err))
		result.NotifyErr = err
		return result, nil
	}
	result.Notification = n
	uc.announceNotification(ctx, *n)
	return result, nil
}

func (uc *UseCase) ToggleComplete(ctx context.Context, id string, complete bool) (*domain.Task, error) {
	task, err := uc.tasks.SetComplete(ctx, id, complete)
	if err != nil {
		uc.logger.Error("error toggling complete", zap.String("task_id", id), zap.Error(err))
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task once the caller has confirmed it. Notifications
// that reference the task are left in place.
func (uc *UseCase) DeleteTask(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return domain.ErrDeleteNotConfirmed
	}
	if err := uc.tasks.Delete(ctx, id); err != nil {
		uc.logger.Error("error deleting task", zap.String("task_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (uc *UseCase) announceTask(ctx context.Context, task domain.Task) {
	if uc.events == nil {
		return
	}
	if err := uc.events.TaskInserted(ctx, task); err != nil {
		uc.logger.Error("failed to announce task insert", zap.String("task_id", task.ID), zap.Error(err))
	}
}

func (uc *UseCase) announceNotification(ctx context.Context, n domain.Notification) {
	if uc.events == nil {
		return
	}
	if err := uc.events.NotificationInserted(ctx, n); err != nil {
		uc.logger.Error("failed to announce notification insert", zap.String("notification_id", n.ID), zap.Error(err))
	}
}
