package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndParse(t *testing.T) {
	s := NewSigner("secret", "taskflow")
	raw, err := s.Sign("user-1", "session-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := s.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "taskflow", claims.Issuer)
}

func TestParseRejects(t *testing.T) {
	s := NewSigner("secret", "taskflow")
	expired, err := s.Sign("user-1", "session-1", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	foreign, err := NewSigner("other", "taskflow").Sign("user-1", "session-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	wrongIssuer, err := NewSigner("secret", "elsewhere").Sign("user-1", "session-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{"expired", expired},
		{"wrong secret", foreign},
		{"wrong issuer", wrongIssuer},
		{"garbage", "not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Parse(tt.raw)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestSignRequiresSession(t *testing.T) {
	_, err := NewSigner("secret", "").Sign("user-1", "", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalid)
}
