package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	PriorityNotification = 1
	PriorityTask         = 2
	priorityDefault      = 3
	priorityMax          = 5
)

// Item is a realtime event whose delivery is still pending.
type Item struct {
	ID        string          `json:"id"`
	Relation  string          `json:"relation"`
	Event     json.RawMessage `json:"event"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	LastError string          `json:"last_error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > priorityMax {
		i.Priority = priorityDefault
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
