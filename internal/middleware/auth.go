package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/api/transport"
	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/internal/token"
	"github.com/fastygo/taskflow/pkg/httpcontext"
)

const sessionLookupTimeout = 2 * time.Second

// SessionChecker confirms that the session behind a token is still open.
type SessionChecker interface {
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
}

// JWTAuth rejects requests without a valid bearer token for a live session and
// exposes the caller through httpcontext.UserID.
func JWTAuth(signer *token.Signer, sessions SessionChecker, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			raw := extractToken(ctx)
			if raw == "" {
				unauthorized(ctx, "missing bearer token")
				return
			}

			claims, err := signer.Parse(raw)
			if err != nil {
				logger.Warn("invalid jwt token", zap.Error(err))
				unauthorized(ctx, "invalid token")
				return
			}

			if sessions != nil {
				lookupCtx, cancel := context.WithTimeout(context.Background(), sessionLookupTimeout)
				session, err := sessions.GetSession(lookupCtx, claims.SessionID)
				cancel()
				if err != nil || session.UserID != claims.UserID {
					logger.Info("rejected token for closed session",
						zap.String("session_id", claims.SessionID),
						zap.Error(err))
					unauthorized(ctx, "session expired")
					return
				}
			}

			ctx.SetUserValue(httpcontext.UserIDValue, claims.UserID)
			ctx.SetUserValue(httpcontext.SessionIDValue, claims.SessionID)
			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		// EventSource cannot set headers.
		return string(ctx.QueryArgs().Peek("access_token"))
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}

func unauthorized(ctx *fasthttp.RequestCtx, msg string) {
	body, _ := json.Marshal(transport.NewError(string(domain.ErrCodeUnauthorized), msg, nil))
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	ctx.SetBody(body)
}
