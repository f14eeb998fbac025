package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reshop/server/internal/auth"
	"github.com/reshop/server/internal/httpx"
	"github.com/reshop/server/internal/logging"
)

const secret = "test-secret"

type fakeRoles map[string]string

func (f fakeRoles) RoleOf(_ context.Context, email string) (string, error) {
	return f[email], nil
}

type failingRoles struct{}

func (failingRoles) RoleOf(context.Context, string) (string, error) {
	return "", errors.New("mongo down")
}

func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		require.True(t, ok)
		token, ok := auth.TokenFromContext(r.Context())
		require.True(t, ok)
		require.NotEmpty(t, token)
		httpx.JSON(w, http.StatusOK, map[string]string{"email": claims.Email})
	})
}

func mustIssue(t *testing.T, codec *auth.Codec, email, role string) string {
	t.Helper()
	tok, err := codec.Issue(auth.Identity{Email: email, Role: role})
	require.NoError(t, err)
	return tok
}

func serve(h http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body httpx.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestRequireAuth(t *testing.T) {
	codec := auth.NewCodec(secret, time.Hour)
	other := auth.NewCodec("another-secret", time.Hour)
	h := RequireAuth(codec, nil, logging.Discard())(okHandler(t))

	tests := []struct {
		name   string
		header string
		status int
		msg    string
	}{
		{"missing header", "", http.StatusUnauthorized, httpx.MsgUnauthorized},
		{"valid token", "Bearer " + mustIssue(t, codec, "alice@example.com", ""), http.StatusOK, ""},
		{"lowercase scheme", "bearer " + mustIssue(t, codec, "alice@example.com", ""), http.StatusOK, ""},
		{"signed with another secret", "Bearer " + mustIssue(t, other, "alice@example.com", ""), http.StatusForbidden, httpx.MsgForbidden},
		{"garbage token", "Bearer not.a.jwt", http.StatusForbidden, httpx.MsgForbidden},
		{"scheme only", "Bearer", http.StatusForbidden, httpx.MsgForbidden},
		{"no scheme", mustIssue(t, codec, "alice@example.com", ""), http.StatusForbidden, httpx.MsgForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(h, tc.header)
			assert.Equal(t, tc.status, rec.Code)
			if tc.msg != "" {
				assert.Equal(t, tc.msg, messageOf(t, rec))
			}
		})
	}
}

func TestRequireAuth_Revoked(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	revocations := auth.NewRevocationStore(rdb)
	codec := auth.NewCodec(secret, time.Hour)
	h := RequireAuth(codec, revocations, logging.Discard())(okHandler(t))

	tok := mustIssue(t, codec, "alice@example.com", "")
	assert.Equal(t, http.StatusOK, serve(h, "Bearer "+tok).Code)

	require.NoError(t, revocations.Revoke(context.Background(), tok, time.Hour))
	assert.Equal(t, http.StatusForbidden, serve(h, "Bearer "+tok).Code)

	mr.Close()
	assert.Equal(t, http.StatusInternalServerError, serve(h, "Bearer "+tok).Code)
}

func TestRequireRole(t *testing.T) {
	codec := auth.NewCodec(secret, 0)
	roles := fakeRoles{
		"admin@example.com": "admin",
		"bob@example.com":   "user",
	}
	chain := func(src RoleSource) http.Handler {
		return RequireAuth(codec, nil, logging.Discard())(
			RequireRole(src, "admin", logging.Discard())(okHandler(t)),
		)
	}

	t.Run("stored admin passes", func(t *testing.T) {
		rec := serve(chain(roles), "Bearer "+mustIssue(t, codec, "admin@example.com", ""))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	t.Run("stored user is forbidden", func(t *testing.T) {
		rec := serve(chain(roles), "Bearer "+mustIssue(t, codec, "bob@example.com", ""))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("token role is not trusted", func(t *testing.T) {
		rec := serve(chain(roles), "Bearer "+mustIssue(t, codec, "bob@example.com", "admin"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("unknown user is forbidden", func(t *testing.T) {
		rec := serve(chain(roles), "Bearer "+mustIssue(t, codec, "ghost@example.com", "admin"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
	t.Run("authentication runs first", func(t *testing.T) {
		rec := serve(chain(roles), "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("lookup failure is a server error", func(t *testing.T) {
		rec := serve(chain(failingRoles{}), "Bearer "+mustIssue(t, codec, "admin@example.com", ""))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, httpx.MsgServerError, messageOf(t, rec))
	})
	t.Run("without identity", func(t *testing.T) {
		h := RequireRole(roles, "admin", logging.Discard())(okHandler(t))
		rec := serve(h, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestAssertOwnsResource(t *testing.T) {
	assert.NoError(t, AssertOwnsResource("alice@example.com", "alice@example.com"))

	err := AssertOwnsResource("bob@example.com", "alice@example.com")
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	err = AssertOwnsResource("", "")
	assert.ErrorIs(t, err, httpx.ErrForbidden)

	// Case matters: emails are compared exactly as stored.
	err = AssertOwnsResource("Alice@example.com", "alice@example.com")
	assert.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestAssertOwner(t *testing.T) {
	ctx := auth.WithClaims(context.Background(), &auth.Claims{Email: "alice@example.com"}, "tok")
	assert.NoError(t, AssertOwner(ctx, "alice@example.com"))
	assert.ErrorIs(t, AssertOwner(ctx, "bob@example.com"), httpx.ErrForbidden)
	assert.ErrorIs(t, AssertOwner(context.Background(), "alice@example.com"), httpx.ErrForbidden)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("  Bearer   abc "))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("abc"))
}
