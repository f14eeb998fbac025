package bookings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/reshop/server/internal/auth"
	"github.com/reshop/server/internal/logging"
	"github.com/reshop/server/internal/store/memstore"
)

func create(h *Handler, email, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(body))
	if email != "" {
		req = req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{Email: email}, "token"))
	}
	rec := httptest.NewRecorder()
	h.Create(rec, req)
	return rec
}

func TestCreate_WithoutProductSkipsWishlist(t *testing.T) {
	bookings := memstore.New()
	wishlist := memstore.New(bson.M{"email": "alice@example.com", "productId": "p1"})
	h := NewHandler(bookings, wishlist, logging.Discard())

	rec := create(h, "alice@example.com", `{"email":"alice@example.com"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body CreateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Booking.Acknowledged)
	assert.Zero(t, body.Wishlist.DeletedCount)
	assert.Equal(t, 1, bookings.Len())
	assert.Equal(t, 1, wishlist.Len())
}

func TestCreate_RemovesEveryMatchingEntry(t *testing.T) {
	bookings := memstore.New()
	wishlist := memstore.New(
		bson.M{"email": "alice@example.com", "productId": "p1"},
		bson.M{"email": "alice@example.com", "productId": "p1"},
		bson.M{"email": "alice@example.com", "productId": "p2"},
	)
	h := NewHandler(bookings, wishlist, logging.Discard())

	rec := create(h, "alice@example.com", `{"email":"alice@example.com","productId":"p1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body CreateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(2), body.Wishlist.DeletedCount)

	left, err := wishlist.Find(context.Background(), bson.M{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "p2", left[0]["productId"])
}

func TestCreate_CleanupUsesCallerEmail(t *testing.T) {
	bookings := memstore.New()
	wishlist := memstore.New(
		bson.M{"email": "alice@example.com", "productId": "p1"},
		bson.M{"email": "bob@example.com", "productId": "p1"},
	)
	h := NewHandler(bookings, wishlist, logging.Discard())

	rec := create(h, "bob@example.com", `{"productId":"p1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	left, err := wishlist.Find(context.Background(), bson.M{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "alice@example.com", left[0]["email"])
}

func TestCreate_ForSomeoneElseIsForbidden(t *testing.T) {
	bookings := memstore.New()
	wishlist := memstore.New(bson.M{"email": "alice@example.com", "productId": "p1"})
	h := NewHandler(bookings, wishlist, logging.Discard())

	for _, body := range []string{
		`{"email":"alice@example.com","productId":"p1"}`,
		`{"email":"","productId":"p1"}`,
		`{"email":42,"productId":"p1"}`,
	} {
		rec := create(h, "bob@example.com", body)
		assert.Equal(t, http.StatusForbidden, rec.Code, body)
		assert.JSONEq(t, `{"message":"Forbidden access"}`, rec.Body.String())
	}
	assert.Zero(t, bookings.Len())
	assert.Equal(t, 1, wishlist.Len())
}

func TestCreate_WithoutIdentity(t *testing.T) {
	h := NewHandler(memstore.New(), memstore.New(), logging.Discard())

	rec := create(h, "", `{"productId":"p1"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
