package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/repository"
)

// LoginInput identifies a directory user by id or email.
type LoginInput struct {
	UserID string
	Email  string
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	logger   *zap.Logger
	now      func() time.Time
}

func New(users repository.UserRepository, sessions repository.SessionRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateSession opens a session for an existing directory user.
func (uc *UseCase) CreateSession(ctx context.Context, in LoginInput, ttl time.Duration) (*domain.Session, error) {
	user, err := uc.lookup(ctx, in)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		uc.logger.Error("failed to save session", zap.String("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	return session, nil
}

// GetSession returns a live session; expired sessions are removed and reported as missing.
func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(uc.now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*domain.Session, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.ExpiresAt = uc.now().Add(ttl)
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (uc *UseCase) RevokeSession(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

func (uc *UseCase) lookup(ctx context.Context, in LoginInput) (*domain.User, error) {
	switch {
	case in.UserID != "":
		return uc.users.GetByID(ctx, in.UserID)
	case strings.TrimSpace(in.Email) != "":
		return uc.users.GetByEmail(ctx, in.Email)
	default:
		return nil, domain.ErrInvalidPayload
	}
}
