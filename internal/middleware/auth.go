package middleware

import (
	"context"
	"errors"
	"net/http"

	"bridge-be/internal/auth"
	"bridge-be/internal/logger"
	"bridge-be/internal/user"
	"bridge-be/internal/utils"

	"go.uber.org/zap"
)

// SessionOpener restores a persisted auth session. *user.SessionManager
// satisfies it.
type SessionOpener interface {
	Open(ctx context.Context, id string) (*user.Session, error)
}

// Authenticate resolves the access token (cookie or bearer header) to a
// live session. Requests without a token pass through anonymously; a token
// that does not resolve to a signed-in session is rejected.
func Authenticate(sessions SessionOpener) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			log := logger.FromCtx(r.Context()).With(zap.String("layer", "middleware"))

			claims, err := auth.ParseToken(tokenStr)
			if err != nil {
				log.Debug("rejected access token", zap.Error(err))
				utils.WriteJSONError(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			session, err := sessions.Open(r.Context(), claims.SessionID)
			if err != nil {
				if !errors.Is(err, user.ErrSessionNotFound) {
					log.Error("failed to open session", zap.String("session_id", claims.SessionID), zap.Error(err))
				}
				utils.WriteJSONError(w, "session expired", http.StatusUnauthorized)
				return
			}

			u, err := session.User()
			if err != nil || u.ID != claims.UserID {
				utils.WriteJSONError(w, "session expired", http.StatusUnauthorized)
				return
			}

			ctx := utils.SetUserContext(r.Context(), u.ID, u.Email, string(u.Role))
			ctx = utils.WithSession(ctx, session)
			ctx = logger.WithUserID(ctx, u.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
			utils.WriteJSONError(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole admits only authenticated users holding one of roles.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
				utils.WriteJSONError(w, "authentication required", http.StatusUnauthorized)
				return
			}
			role := user.Role(utils.GetUserRoleFromContext(r.Context()))
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			utils.WriteJSONError(w, "forbidden", http.StatusForbidden)
		})
	}
}
