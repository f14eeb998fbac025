package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/reshop/server/internal/auth"
	"github.com/reshop/server/internal/httpx"
)

// TokenVerifier verifies a bearer credential.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RevocationChecker reports whether a credential was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// RequireAuth rejects requests without an Authorization header (401) or with a
// credential that fails verification or was revoked (403). On success the
// verified claims and the raw token are attached to the request context.
// revoked may be nil.
func RequireAuth(verifier TokenVerifier, revoked RevocationChecker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				httpx.RespondError(w, r, log, httpx.ErrUnauthenticated)
				return
			}

			token := bearerToken(header)
			claims, err := verifier.Verify(token)
			if err != nil {
				httpx.RespondError(w, r, log, fmt.Errorf("%w: %v", httpx.ErrForbidden, err))
				return
			}

			if revoked != nil {
				isRevoked, err := revoked.IsRevoked(r.Context(), token)
				if err != nil {
					httpx.RespondError(w, r, log, fmt.Errorf("revocation lookup: %w", err))
					return
				}
				if isRevoked {
					httpx.RespondError(w, r, log, fmt.Errorf("%w: %v", httpx.ErrForbidden, auth.ErrTokenRevoked))
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims, token)))
		})
	}
}

// bearerToken returns the part after the scheme. A header without one yields
// "", which then fails verification as malformed.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
