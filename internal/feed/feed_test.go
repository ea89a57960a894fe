package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/realtime"
)

type mockLister struct {
	mu        sync.Mutex
	Items     []domain.Notification
	Err       error
	CallCount int
	LastLimit int
}

func (m *mockLister) ListNotifications(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
	m.LastLimit = limit
	if m.Err != nil {
		return nil, m.Err
	}
	var out []domain.Notification
	for _, n := range m.Items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func publish(t *testing.T, hub *realtime.Hub, n domain.Notification) {
	t.Helper()
	event, err := realtime.NewNotificationInsert(n)
	require.NoError(t, err)
	require.NoError(t, hub.Publish(context.Background(), event))
}

func ids(items []domain.Notification) []string {
	out := make([]string, 0, len(items))
	for _, n := range items {
		out = append(out, n.ID)
	}
	return out
}

func TestFeedLoadsThenPrependsInserts(t *testing.T) {
	hub := realtime.NewHub()
	store := &mockLister{Items: []domain.Notification{
		{ID: "n2", UserID: "u1", Message: "second"},
		{ID: "n1", UserID: "u1", Message: "first", Read: true},
	}}

	var inserted []string
	var mu sync.Mutex
	f := New(store, hub, Options{UserID: "u1", OnInsert: func(n domain.Notification) {
		mu.Lock()
		inserted = append(inserted, n.ID)
		mu.Unlock()
	}})
	defer f.Close()

	require.NoError(t, f.Start(context.Background()))
	assert.Equal(t, []string{"n2", "n1"}, ids(f.Items()))
	assert.True(t, f.Items()[1].Read)
	assert.Equal(t, defaultLimit, store.LastLimit)

	publish(t, hub, domain.Notification{ID: "n3", UserID: "u1", Message: "third"})
	publish(t, hub, domain.Notification{ID: "x1", UserID: "u2", Message: "not mine"})

	require.Eventually(t, func() bool { return len(f.Items()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"n3", "n2", "n1"}, ids(f.Items()))

	mu.Lock()
	assert.Equal(t, []string{"n3"}, inserted)
	mu.Unlock()
}

func TestFeedSkipsDuplicates(t *testing.T) {
	hub := realtime.NewHub()
	store := &mockLister{Items: []domain.Notification{{ID: "n1", UserID: "u1"}}}
	f := New(store, hub, Options{UserID: "u1"})
	defer f.Close()

	require.NoError(t, f.Start(context.Background()))
	assert.False(t, f.Prepend(domain.Notification{ID: "n1", UserID: "u1"}))
	assert.True(t, f.Prepend(domain.Notification{ID: "n2", UserID: "u1"}))
	assert.Equal(t, []string{"n2", "n1"}, ids(f.Items()))
}

func TestFeedWithoutUserDoesNothing(t *testing.T) {
	hub := realtime.NewHub()
	store := &mockLister{}
	f := New(store, hub, Options{})
	defer f.Close()

	require.NoError(t, f.Start(context.Background()))
	assert.Equal(t, 0, store.CallCount)
	assert.Equal(t, 0, hub.Len())
}

func TestFeedLoadFailureReleasesSubscription(t *testing.T) {
	hub := realtime.NewHub()
	store := &mockLister{Err: errors.New("permission denied")}
	f := New(store, hub, Options{UserID: "u1"})
	defer f.Close()

	assert.Error(t, f.Start(context.Background()))
	assert.Equal(t, 0, hub.Len())
	assert.Empty(t, f.Items())
}

func TestFeedCloseTearsDownSubscription(t *testing.T) {
	hub := realtime.NewHub()
	f := New(&mockLister{}, hub, Options{UserID: "u1"})

	require.NoError(t, f.Start(context.Background()))
	require.Equal(t, 1, hub.Len())

	require.NoError(t, f.Close())
	assert.Equal(t, 0, hub.Len())
	assert.False(t, f.Prepend(domain.Notification{ID: "late"}))
	assert.ErrorIs(t, f.Start(context.Background()), ErrClosed)
}
