package domain

import "time"

// User is a read-only directory entry; accounts are provisioned outside this service.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
