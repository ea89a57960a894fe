package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskflow/domain"
)

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "realtime:tasks", Channel(RelationTasks, Predicate{}))
	assert.Equal(t, "realtime:tasks:assigned_to=eq.u1", Channel(RelationTasks, Eq("assigned_to", "u1")))
	assert.Equal(t, "realtime:notifications:user_id=eq.u2", Channel(RelationNotifications, Eq("user_id", "u2")))
}

func TestTaskInsertChannels(t *testing.T) {
	event, err := NewTaskInsert(domain.Task{ID: "t1", Title: "write docs", AssignedTo: "u2", CreatedBy: "u1"})
	require.NoError(t, err)

	assert.Equal(t, Insert, event.Type)
	assert.ElementsMatch(t, []string{
		"realtime:tasks",
		"realtime:tasks:assigned_to=eq.u2",
		"realtime:tasks:created_by=eq.u1",
	}, event.Channels())

	task, err := event.Task()
	require.NoError(t, err)
	assert.Equal(t, "write docs", task.Title)

	_, err = event.Notification()
	assert.Error(t, err)
}

func TestUnassignedTaskSkipsAssigneeChannel(t *testing.T) {
	event, err := NewTaskInsert(domain.Task{ID: "t1", CreatedBy: "u1"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"realtime:tasks", "realtime:tasks:created_by=eq.u1"}, event.Channels())
}

func TestEventMatches(t *testing.T) {
	event, err := NewNotificationInsert(domain.Notification{ID: "n1", UserID: "u1", TaskID: "t1"})
	require.NoError(t, err)

	assert.True(t, event.Matches(RelationNotifications, Predicate{}))
	assert.True(t, event.Matches(RelationNotifications, Eq("user_id", "u1")))
	assert.False(t, event.Matches(RelationNotifications, Eq("user_id", "u2")))
	assert.False(t, event.Matches(RelationTasks, Predicate{}))
}

func TestHubDeliversScopedEvents(t *testing.T) {
	hub := NewHub()
	ctx := context.Background()

	mine, err := hub.Subscribe(ctx, RelationTasks, Eq("assigned_to", "u1"))
	require.NoError(t, err)
	defer mine.Close()
	theirs, err := hub.Subscribe(ctx, RelationTasks, Eq("assigned_to", "u2"))
	require.NoError(t, err)
	defer theirs.Close()

	event, err := NewTaskInsert(domain.Task{ID: "t1", AssignedTo: "u1", CreatedBy: "u3"})
	require.NoError(t, err)
	require.NoError(t, hub.Publish(ctx, event))

	select {
	case got := <-mine.C:
		assert.Equal(t, event.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("expected event on matching subscription")
	}

	select {
	case got := <-theirs.C:
		t.Fatalf("unexpected event %s on other user's subscription", got.ID)
	default:
	}
}

func TestHubCloseStopsDelivery(t *testing.T) {
	hub := NewHub()
	sub, err := hub.Subscribe(context.Background(), RelationNotifications, Eq("user_id", "u1"))
	require.NoError(t, err)
	require.Equal(t, 1, hub.Len())

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
	assert.Equal(t, 0, hub.Len())

	_, open := <-sub.C
	assert.False(t, open)
}

func TestHubSubscriptionEndsWithContext(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	sub, err := hub.Subscribe(ctx, RelationTasks, Predicate{})
	require.NoError(t, err)

	cancel()
	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription not torn down after cancel")
	}
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, 10*time.Millisecond)
}
