package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/filter"
	"github.com/fastygo/taskflow/internal/view"
	"github.com/fastygo/taskflow/repository"
)

const (
	userU = "user-u"
	userV = "user-v"
)

func newUseCase() (*UseCase, *memoryTasks, *memoryNotifications, *mockEvents) {
	tasks := newMemoryTasks()
	notes := &memoryNotifications{}
	events := &mockEvents{}
	return New(tasks, notes, events, nil), tasks, notes, events
}

func TestCreateTaskValidatesBeforeStore(t *testing.T) {
	tests := []struct {
		name string
		in   CreateInput
		want error
	}{
		{"empty title", CreateInput{Title: "", AssignedTo: userV, CreatedBy: userU}, domain.ErrTaskTitleRequired},
		{"blank title", CreateInput{Title: "   ", AssignedTo: userV, CreatedBy: userU}, domain.ErrTaskTitleRequired},
		{"no assignee", CreateInput{Title: "ship", CreatedBy: userU}, domain.ErrTaskAssigneeRequired},
		{"no creator", CreateInput{Title: "ship", AssignedTo: userV}, domain.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, tasks, notes, events := newUseCase()
			_, err := uc.CreateTask(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 0, tasks.CallCount)
			assert.Equal(t, 0, notes.Len())
			assert.Empty(t, events.Tasks)
		})
	}
}

func TestCreateTaskNotifiesOtherAssignee(t *testing.T) {
	uc, _, notes, events := newUseCase()

	created, err := uc.CreateTask(context.Background(), CreateInput{
		Title:      "Review PR",
		AssignedTo: userV,
		CreatedBy:  userU,
	})
	require.NoError(t, err)
	require.NotNil(t, created.Notification)
	assert.NoError(t, created.NotifyErr)

	assert.False(t, created.Task.IsComplete)
	assert.Equal(t, userV, created.Notification.UserID)
	assert.Equal(t, created.Task.ID, created.Notification.TaskID)
	assert.Equal(t, "You have been assigned a new task: Review PR", created.Notification.Message)
	assert.Equal(t, 1, notes.Len())

	require.Len(t, events.Tasks, 1)
	require.Len(t, events.Notifications, 1)
	assert.Equal(t, created.Task.ID, events.Tasks[0].ID)
}

func TestCreateTaskSelfAssignedSkipsNotification(t *testing.T) {
	uc, _, notes, events := newUseCase()

	created, err := uc.CreateTask(context.Background(), CreateInput{Title: "Plan", AssignedTo: userU, CreatedBy: userU})
	require.NoError(t, err)
	assert.Nil(t, created.Notification)
	assert.Equal(t, 0, notes.Len())
	assert.Len(t, events.Tasks, 1)
	assert.Empty(t, events.Notifications)
}

func TestCreateTaskReportsNotificationFailure(t *testing.T) {
	uc, tasks, notes, _ := newUseCase()
	notes.FailWith = ErrMockStorage

	created, err := uc.CreateTask(context.Background(), CreateInput{Title: "Plan", AssignedTo: userV, CreatedBy: userU})
	require.NoError(t, err)
	assert.ErrorIs(t, created.NotifyErr, ErrMockStorage)
	assert.Equal(t, 1, tasks.CallCount)
}

func TestCreateTaskPropagatesStoreError(t *testing.T) {
	uc, tasks, notes, events := newUseCase()
	tasks.FailWith = ErrMockStorage

	_, err := uc.CreateTask(context.Background(), CreateInput{Title: "Plan", AssignedTo: userV, CreatedBy: userU})
	assert.ErrorIs(t, err, ErrMockStorage)
	assert.Equal(t, 1, tasks.CallCount)
	assert.Equal(t, 0, notes.Len())
	assert.Empty(t, events.Tasks)
}

func TestListTasksRejectsUnknownFilter(t *testing.T) {
	uc, tasks, _, _ := newUseCase()
	_, err := uc.ListTasks(context.Background(), repository.TaskQuery{Filter: "someday", UserID: userU})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Equal(t, 0, tasks.CallCount)
}

func TestToggleCompleteThenReload(t *testing.T) {
	uc, _, _, _ := newUseCase()
	ctx := context.Background()

	created, err := uc.CreateTask(ctx, CreateInput{Title: "Write tests", AssignedTo: userU, CreatedBy: userU})
	require.NoError(t, err)

	c := view.New(uc, view.Options{UserID: userU})
	defer c.Close()

	_, err = uc.ToggleComplete(ctx, created.Task.ID, true)
	require.NoError(t, err)
	require.NoError(t, c.Reload(ctx))

	snap := c.Snapshot()
	require.Len(t, snap.Tasks, 1)
	assert.True(t, snap.Tasks[0].IsComplete)
}

func TestToggleCompleteMissingTask(t *testing.T) {
	uc, _, _, _ := newUseCase()
	_, err := uc.ToggleComplete(context.Background(), "missing", true)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	uc, tasks, _, _ := newUseCase()
	err := uc.DeleteTask(context.Background(), "any", false)
	assert.ErrorIs(t, err, domain.ErrDeleteNotConfirmed)
	assert.Equal(t, 0, tasks.CallCount)
}

func TestDeleteKeepsNotifications(t *testing.T) {
	uc, _, notes, _ := newUseCase()
	ctx := context.Background()

	created, err := uc.CreateTask(ctx, CreateInput{Title: "Temporary", AssignedTo: userV, CreatedBy: userU})
	require.NoError(t, err)
	require.Equal(t, 1, notes.Len())

	c := view.New(uc, view.Options{UserID: userU, Filter: filter.All})
	defer c.Close()

	require.NoError(t, uc.DeleteTask(ctx, created.Task.ID, true))
	require.NoError(t, c.Reload(ctx))

	assert.Empty(t, c.Snapshot().Tasks)
	assert.Equal(t, 1, notes.Len())
}

func TestOverdueScenario(t *testing.T) {
	uc, _, _, _ := newUseCase()
	ctx := context.Background()
	now := time.Now().UTC()
	yesterday := now.AddDate(0, 0, -1)

	created, err := uc.CreateTask(ctx, CreateInput{Title: "A", DueDate: &yesterday, AssignedTo: userU, CreatedBy: userV})
	require.NoError(t, err)

	overdue, err := uc.ListTasks(ctx, repository.TaskQuery{Filter: filter.Overdue, UserID: userU, Now: now})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, created.Task.ID, overdue[0].ID)

	today, err := uc.ListTasks(ctx, repository.TaskQuery{Filter: filter.DueToday, UserID: userU, Now: now})
	require.NoError(t, err)
	assert.Empty(t, today)
}
