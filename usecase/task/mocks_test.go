package task

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/filter"
	"github.com/fastygo/taskflow/repository"
)

var (
	ErrMockStorage = errors.New("mock storage error")
)

// memoryTasks is an in-memory TaskRepository that honours the filter semantics.
type memoryTasks struct {
	mu        sync.Mutex
	rows      map[string]domain.Task
	CallCount int
	FailWith  error
}

func newMemoryTasks() *memoryTasks {
	return &memoryTasks{rows: make(map[string]domain.Task)}
}

func (m *memoryTasks) call() error {
	m.CallCount++
	return m.FailWith
}

func (m *memoryTasks) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call(); err != nil {
		return nil, err
	}
	t, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (m *memoryTasks) List(ctx context.Context, q repository.TaskQuery) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call(); err != nil {
		return nil, err
	}
	var out []domain.Task
	for _, t := range m.rows {
		if filter.Matches(t, q.Filter, q.UserID, q.Now) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DueDate, out[j].DueDate
		switch {
		case a == nil && b == nil:
			return out[i].ID < out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return out, nil
}

func (m *memoryTasks) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call(); err != nil {
		return nil, err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	m.rows[t.ID] = *t
	return t, nil
}

func (m *memoryTasks) SetComplete(ctx context.Context, id string, complete bool) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call(); err != nil {
		return nil, err
	}
	t, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	t.IsComplete = complete
	m.rows[id] = t
	return &t, nil
}

func (m *memoryTasks) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.call(); err != nil {
		return err
	}
	if _, ok := m.rows[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(m.rows, id)
	return nil
}

type memoryNotifications struct {
	mu       sync.Mutex
	rows     []domain.Notification
	FailWith error
}

func (m *memoryNotifications) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].UserID == userID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func (m *memoryNotifications) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	m.rows = append(m.rows, *n)
	return n, nil
}

func (m *memoryNotifications) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type mockEvents struct {
	mu            sync.Mutex
	Tasks         []domain.Task
	Notifications []domain.Notification
}

func (m *mockEvents) TaskInserted(ctx context.Context, t domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Tasks = append(m.Tasks, t)
	return nil
}

func (m *mockEvents) NotificationInserted(ctx context.Context, n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications = append(m.Notifications, n)
	return nil
}
