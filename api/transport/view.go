package transport

import (
	"time"

	"github.com/fastygo/taskflow/domain"
)

// SessionResponse is returned by login and refresh.
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TaskListEvent is the payload of a `tasks` stream event.
type TaskListEvent struct {
	Tasks   []domain.Task `json:"tasks"`
	Filter  string        `json:"filter"`
	Version uint64        `json:"version"`
	Error   string        `json:"error,omitempty"`
}

// AssignedEvent is the payload of an `assigned` stream event.
type AssignedEvent struct {
	TaskID  string `json:"task_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// CreatedMeta reports what happened besides storing the task.
type CreatedMeta struct {
	Notified    bool   `json:"notified"`
	NotifyError string `json:"notify_error,omitempty"`
}
