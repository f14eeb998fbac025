package middleware

import (
	"context"
	"fmt"

	"github.com/reshop/server/internal/auth"
	"github.com/reshop/server/internal/httpx"
)

// AssertOwnsResource fails with httpx.ErrForbidden unless claimedEmail and
// pathEmail are identical. Admins get no exception here.
func AssertOwnsResource(claimedEmail, pathEmail string) error {
	if claimedEmail == "" || claimedEmail != pathEmail {
		return fmt.Errorf("%w: %q may not act on %q", httpx.ErrForbidden, claimedEmail, pathEmail)
	}
	return nil
}

// AssertOwner applies AssertOwnsResource to the identity in ctx.
func AssertOwner(ctx context.Context, pathEmail string) error {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: %v", httpx.ErrForbidden, auth.ErrNoIdentity)
	}
	return AssertOwnsResource(claims.Email, pathEmail)
}
