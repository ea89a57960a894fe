package handler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/filter"
	"github.com/fastygo/taskflow/repository"
)

type memoryTasks struct {
	mu        sync.Mutex
	rows      map[string]domain.Task
	CallCount int
}

func newMemoryTasks(seed ...domain.Task) *memoryTasks {
	m := &memoryTasks{rows: make(map[string]domain.Task)}
	for _, t := range seed {
		m.rows[t.ID] = t
	}
	return m
}

func (m *memoryTasks) put(t domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[t.ID] = t
}

func (m *memoryTasks) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
	t, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (m *memoryTasks) List(ctx context.Context, q repository.TaskQuery) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
	out := []domain.Task{}
	for _, t := range m.rows {
		if filter.Matches(t, q.Filter, q.UserID, q.Now) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryTasks) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
	stored := *t
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC()
	m.rows[stored.ID] = stored
	return &stored, nil
}

func (m *memoryTasks) SetComplete(ctx context.Context, id string, complete bool) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
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
	m.CallCount++
	if _, ok := m.rows[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(m.rows, id)
	return nil
}

type memoryNotifications struct {
	mu   sync.Mutex
	rows []domain.Notification
}

func (m *memoryNotifications) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Notification{}
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
	stored := *n
	stored.ID = uuid.NewString()
	m.rows = append(m.rows, stored)
	return &stored, nil
}

type memoryUsers struct {
	users []domain.User
}

func (m *memoryUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memoryUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memoryUsers) List(ctx context.Context) ([]domain.User, error) {
	return m.users, nil
}

type memorySessions struct {
	mu   sync.Mutex
	rows map[string]domain.Session
}

func (m *memorySessions) Get(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &s, nil
}

func (m *memorySessions) Save(ctx context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.ID] = *s
	return nil
}

func (m *memorySessions) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}
