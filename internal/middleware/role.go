package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/reshop/server/internal/auth"
	"github.com/reshop/server/internal/httpx"
)

// RoleSource looks up the stored role of a user. A user without a record has
// role "".
type RoleSource interface {
	RoleOf(ctx context.Context, email string) (string, error)
}

// RequireRole admits only identities whose stored role equals role. It must run
// after RequireAuth. The role embedded in the credential is never consulted:
// it may be stale.
func RequireRole(roles RoleSource, role string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, r, log, fmt.Errorf("%w: %v", httpx.ErrForbidden, auth.ErrNoIdentity))
				return
			}

			stored, err := roles.RoleOf(r.Context(), claims.Email)
			if err != nil {
				httpx.RespondError(w, r, log, fmt.Errorf("role lookup: %w", err))
				return
			}
			if stored != role {
				if log != nil {
					log.WarnContext(r.Context(), "role guard denied",
						slog.String("email", claims.Email),
						slog.String("required", role),
						slog.String("path", r.URL.Path),
					)
				}
				httpx.RespondError(w, r, log, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
