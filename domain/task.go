package domain

import (
	"strings"
	"time"
)

// Task is a unit of work created by one user and optionally assigned to another.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	IsComplete  bool       `json:"is_complete"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (t *Task) HasDueDate() bool {
	return t != nil && t.DueDate != nil && !t.DueDate.IsZero()
}

// NeedsAssignmentNotice reports whether the assignee should be told about the task.
func (t *Task) NeedsAssignmentNotice() bool {
	return t != nil && t.AssignedTo != "" && t.AssignedTo != t.CreatedBy
}

// Validate checks the fields required before a task may be stored.
func (t *Task) Validate() error {
	if t == nil {
		return ErrInvalidPayload
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrTaskTitleRequired
	}
	if strings.TrimSpace(t.AssignedTo) == "" {
		return ErrTaskAssigneeRequired
	}
	if t.CreatedBy == "" {
		return ErrUnauthorized
	}
	return nil
}
