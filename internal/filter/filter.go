// Package filter decides which tasks belong in a view.
//
// Calendar days are always compared in UTC so that the in-process evaluator
// and the SQL predicates built from Bounds agree across daylight-saving shifts.
package filter

import (
	"time"

	"github.com/fastygo/taskflow/domain"
)

// Kind names a task view mode.
type Kind string

const (
	All          Kind = "all"
	AssignedToMe Kind = "assigned_to_me"
	CreatedByMe  Kind = "created_by_me"
	Overdue      Kind = "overdue"
	DueToday     Kind = "due_today"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{All, AssignedToMe, CreatedByMe, Overdue, DueToday}

// ParseKind converts a wire name into a Kind. An empty value selects All.
func ParseKind(value string) (Kind, error) {
	if value == "" {
		return All, nil
	}
	for _, k := range Kinds {
		if string(k) == value {
			return k, nil
		}
	}
	return "", domain.ErrInvalidFilter
}

func (k Kind) Valid() bool {
	_, err := ParseKind(string(k))
	return err == nil && k != ""
}

// Bounds returns the UTC start of the calendar day containing now and the start of the next one.
func Bounds(now time.Time) (start, end time.Time) {
	now = now.UTC()
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// Matches reports whether task is visible for userID under kind at instant now.
func Matches(task domain.Task, kind Kind, userID string, now time.Time) bool {
	switch kind {
	case All:
		return true
	case AssignedToMe:
		return userID != "" && task.AssignedTo == userID
	case CreatedByMe:
		return userID != "" && task.CreatedBy == userID
	case Overdue:
		if !task.HasDueDate() || task.IsComplete {
			return false
		}
		start, _ := Bounds(now)
		return userID != "" && task.AssignedTo == userID && task.DueDate.Before(start)
	case DueToday:
		if !task.HasDueDate() {
			return false
		}
		start, end := Bounds(now)
		due := *task.DueDate
		return !due.Before(start) && due.Before(end)
	default:
		return false
	}
}

// Apply keeps the tasks matching kind, preserving order.
func Apply(tasks []domain.Task, kind Kind, userID string, now time.Time) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, kind, userID, now) {
			out = append(out, t)
		}
	}
	return out
}
