package bookings

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/reshop/server/internal/auth"
	"github.com/reshop/server/internal/httpx"
	"github.com/reshop/server/internal/middleware"
	"github.com/reshop/server/internal/models"
	"github.com/reshop/server/internal/store"
)

// CreateResult is returned by POST /bookings.
type CreateResult struct {
	Booking  *models.InsertResult `json:"booking"`
	Wishlist *models.DeleteResult `json:"wishlist"`
}

// Handler holds booking HTTP handlers.
type Handler struct {
	bookings store.Documents
	wishlist store.Documents
	log      *slog.Logger
}

func NewHandler(bookings, wishlist store.Documents, log *slog.Logger) *Handler {
	return &Handler{bookings: bookings, wishlist: wishlist, log: log}
}

// List returns the caller's bookings.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if err := middleware.AssertOwner(r.Context(), email); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	docs, err := h.bookings.Find(r.Context(), bson.M{models.FieldEmail: email})
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, docs)
}

// Create stores a booking, then drops the caller's wishlist entries for the
// booked product. A booking may only be filed under the caller's own email.
// The two steps are not atomic: if the second fails the booking stays, the
// stale wishlist entry stays, and the caller gets a 500.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, h.log, httpx.ErrUnauthenticated)
		return
	}

	var booking bson.M
	if err := httpx.DecodeJSON(r, &booking); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	if raw, ok := booking[models.FieldEmail]; ok {
		bodyEmail, _ := raw.(string)
		if err := middleware.AssertOwnsResource(claims.Email, bodyEmail); err != nil {
			httpx.RespondError(w, r, h.log, err)
			return
		}
	}

	inserted, err := h.bookings.Insert(r.Context(), booking)
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	productID, _ := booking[models.FieldProductID].(string)
	if productID == "" {
		httpx.JSON(w, http.StatusOK, CreateResult{Booking: inserted, Wishlist: &models.DeleteResult{Acknowledged: true}})
		return
	}

	removed, err := h.wishlist.DeleteMany(r.Context(), bson.M{
		models.FieldEmail:     claims.Email,
		models.FieldProductID: productID,
	})
	if err != nil {
		h.log.WarnContext(r.Context(), "booking stored but wishlist cleanup failed",
			slog.Any("booking_id", inserted.InsertedID),
			slog.String("email", claims.Email),
			slog.String("product_id", productID),
		)
		httpx.RespondError(w, r, h.log, fmt.Errorf("wishlist cleanup after booking: %w", err))
		return
	}

	httpx.JSON(w, http.StatusOK, CreateResult{Booking: inserted, Wishlist: removed})
}

// Delete cancels a booking by id.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.bookings.DeleteByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}
