package repository

import (
	"context"

	"github.com/fastygo/taskflow/domain"
)

// SessionRepository stores login sessions. Implementations expire entries on
// their own once ExpiresAt passes; Get reports domain.ErrSessionNotFound then.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Save creates or replaces the session, resetting its expiry.
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
}
