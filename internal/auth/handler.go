package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/reshop/server/internal/httpx"
	"github.com/reshop/server/internal/models"
)

// UserStore is the slice of the users collection sign-in needs.
type UserStore interface {
	FindOne(ctx context.Context, filter bson.M) (bson.M, error)
	Upsert(ctx context.Context, filter, set bson.M) (*models.UpdateResult, error)
}

// Revoker deny-lists credentials.
type Revoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

// SignInResponse is returned by PUT /user/{email}.
type SignInResponse struct {
	Result *models.UpdateResult `json:"result"`
	Token  string               `json:"token"`
}

// Handler holds credential-issuing HTTP handlers.
type Handler struct {
	users   UserStore
	codec   *Codec
	revoker Revoker
	log     *slog.Logger
}

// NewHandler wires the sign-in and logout handlers.
func NewHandler(users UserStore, codec *Codec, revoker Revoker, log *slog.Logger) *Handler {
	return &Handler{users: users, codec: codec, revoker: revoker, log: log}
}

// SignIn upserts the user record keyed by the path email and issues a credential.
// The client-side identity provider has already authenticated the caller; this
// endpoint only mints the API credential.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	var user bson.M
	if err := httpx.DecodeJSON(r, &user); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	if user == nil {
		user = bson.M{}
	}
	// The path email is the identity; the body cannot re-key the record.
	user[models.FieldEmail] = email

	current, err := h.users.FindOne(r.Context(), bson.M{models.FieldEmail: email})
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	stored, _ := current[models.FieldRole].(string)
	if raw, ok := user[models.FieldRole]; ok {
		if err := assertRoleUnchanged(email, current, stored, raw); err != nil {
			httpx.RespondError(w, r, h.log, err)
			return
		}
	}

	result, err := h.users.Upsert(r.Context(), bson.M{models.FieldEmail: email}, user)
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	role, _ := user[models.FieldRole].(string)
	if role == "" {
		role = stored
	}
	token, err := h.codec.Issue(Identity{Email: email, Role: role})
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusOK, SignInResponse{Result: result, Token: token})
}

// assertRoleUnchanged stops the public upsert from writing the stored role the
// Role Guard trusts. A new record may pick any non-admin role; an existing one
// may only restate the role it already has.
func assertRoleUnchanged(email string, current bson.M, stored string, requested any) error {
	role, ok := requested.(string)
	if !ok {
		return fmt.Errorf("%w: %s sent a non-string role", httpx.ErrForbidden, email)
	}
	if current == nil {
		if role == models.RoleAdmin {
			return fmt.Errorf("%w: %s may not grant itself admin", httpx.ErrForbidden, email)
		}
		return nil
	}
	if role != stored {
		return fmt.Errorf("%w: %s may not change its role from %q to %q", httpx.ErrForbidden, email, stored, role)
	}
	return nil
}

// Logout deny-lists the presented credential until it would have expired anyway,
// or for good when it carries no expiry.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	token, hasToken := TokenFromContext(r.Context())
	if !ok || !hasToken {
		httpx.RespondError(w, r, h.log, httpx.ErrUnauthenticated)
		return
	}

	// A credential without exp never dies on its own, so its entry never expires either.
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
		if ttl <= 0 {
			httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	if err := h.revoker.Revoke(r.Context(), token, ttl); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
