package domain

import (
	"fmt"
	"time"
)

// Notification tells a user that something happened to a task.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	TaskID    string    `json:"task_id"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// AssignmentNotification builds the notice sent to the assignee of a freshly created task.
func AssignmentNotification(task *Task) *Notification {
	return &Notification{
		UserID:  task.AssignedTo,
		Message: fmt.Sprintf("You have been assigned a new task: %s", task.Title),
		TaskID:  task.ID,
	}
}
