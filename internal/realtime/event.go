// Package realtime delivers row-insert events to subscribers scoped by relation
// and an optional single-column equality predicate.
package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskflow/domain"
)

type EventType string

const (
	Insert EventType = "INSERT"
)

const (
	RelationTasks         = "tasks"
	RelationNotifications = "notifications"
)

const channelPrefix = "realtime:"

// Event is a committed change to one row.
type Event struct {
	ID          string            `json:"id"`
	Relation    string            `json:"relation"`
	Type        EventType         `json:"type"`
	New         json.RawMessage   `json:"new"`
	Columns     map[string]string `json:"columns,omitempty"`
	CommittedAt time.Time         `json:"committed_at"`
}

// Predicate restricts a subscription to rows whose Column equals Value.
// The zero Predicate matches every row of the relation.
type Predicate struct {
	Column string
	Value  string
}

func Eq(column, value string) Predicate {
	return Predicate{Column: column, Value: value}
}

func (p Predicate) IsZero() bool {
	return p.Column == ""
}

func (p Predicate) String() string {
	if p.IsZero() {
		return "*"
	}
	return fmt.Sprintf("%s=eq.%s", p.Column, p.Value)
}

// Channel names the pub/sub channel carrying relation events that satisfy p.
func Channel(relation string, p Predicate) string {
	if p.IsZero() {
		return channelPrefix + relation
	}
	return channelPrefix + relation + ":" + p.String()
}

// Channels lists every channel the event must be published on.
func (e Event) Channels() []string {
	channels := []string{Channel(e.Relation, Predicate{})}
	for _, column := range subscribableColumns[e.Relation] {
		if value, ok := e.Columns[column]; ok && value != "" {
			channels = append(channels, Channel(e.Relation, Eq(column, value)))
		}
	}
	return channels
}

// Matches reports whether the event satisfies the relation and predicate of a subscription.
func (e Event) Matches(relation string, p Predicate) bool {
	if e.Relation != relation {
		return false
	}
	if p.IsZero() {
		return true
	}
	return e.Columns[p.Column] == p.Value
}

var subscribableColumns = map[string][]string{
	RelationTasks:         {"assigned_to", "created_by"},
	RelationNotifications: {"user_id"},
}

// NewTaskInsert builds the insert event for a stored task.
func NewTaskInsert(task domain.Task) (Event, error) {
	return newInsert(RelationTasks, task, map[string]string{
		"assigned_to": task.AssignedTo,
		"created_by":  task.CreatedBy,
	})
}

// NewNotificationInsert builds the insert event for a stored notification.
func NewNotificationInsert(n domain.Notification) (Event, error) {
	return newInsert(RelationNotifications, n, map[string]string{
		"user_id": n.UserID,
	})
}

func newInsert(relation string, row interface{}, columns map[string]string) (Event, error) {
	payload, err := json.Marshal(row)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:          uuid.NewString(),
		Relation:    relation,
		Type:        Insert,
		New:         payload,
		Columns:     columns,
		CommittedAt: time.Now().UTC(),
	}, nil
}

// Task decodes the row of a tasks event.
func (e Event) Task() (domain.Task, error) {
	var task domain.Task
	if e.Relation != RelationTasks {
		return task, fmt.Errorf("event %s is on relation %q, not tasks", e.ID, e.Relation)
	}
	err := json.Unmarshal(e.New, &task)
	return task, err
}

// Notification decodes the row of a notifications event.
func (e Event) Notification() (domain.Notification, error) {
	var n domain.Notification
	if e.Relation != RelationNotifications {
		return n, fmt.Errorf("event %s is on relation %q, not notifications", e.ID, e.Relation)
	}
	err := json.Unmarshal(e.New, &n)
	return n, err
}
