package transport

import (
	"strings"
	"time"

	"github.com/fastygo/taskflow/domain"
)

const dateLayout = "2006-01-02"

type TaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// DueDate accepts RFC 3339 timestamps or bare YYYY-MM-DD dates (midnight UTC).
	DueDate    string `json:"due_date"`
	AssignedTo string `json:"assigned_to"`
}

// Due parses DueDate; an empty value means no due date.
func (r TaskRequest) Due() (*time.Time, error) {
	raw := strings.TrimSpace(r.DueDate)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "due_date must be RFC 3339 or YYYY-MM-DD", err)
	}
	return &t, nil
}

type ToggleRequest struct {
	IsComplete *bool `json:"is_complete"`
}

type AuthLoginRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	TTL    int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	TTL int `json:"ttl_seconds"`
}
