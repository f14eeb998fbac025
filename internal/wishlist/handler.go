package wishlist

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/reshop/server/internal/httpx"
	"github.com/reshop/server/internal/middleware"
	"github.com/reshop/server/internal/models"
	"github.com/reshop/server/internal/store"
)

// Handler holds wishlist HTTP handlers.
type Handler struct {
	entries store.Documents
	log     *slog.Logger
}

func NewHandler(entries store.Documents, log *slog.Logger) *Handler {
	return &Handler{entries: entries, log: log}
}

// List returns the caller's wishlist.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if err := middleware.AssertOwner(r.Context(), email); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	docs, err := h.entries.Find(r.Context(), bson.M{models.FieldEmail: email})
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, docs)
}

// Status returns the caller's wishlist entry for a product, or null when the
// product is not on the list.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if err := middleware.AssertOwner(r.Context(), email); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	doc, err := h.entries.FindOne(r.Context(), bson.M{
		models.FieldEmail:     email,
		models.FieldProductID: chi.URLParam(r, "productId"),
	})
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

// Add inserts the posted entry as-is. Duplicates are not collapsed.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var entry bson.M
	if err := httpx.DecodeJSON(r, &entry); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	res, err := h.entries.Insert(r.Context(), entry)
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// Delete removes one entry by id.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.entries.DeleteByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// DeleteByProduct removes every entry for a product, e.g. once it is sold.
func (h *Handler) DeleteByProduct(w http.ResponseWriter, r *http.Request) {
	res, err := h.entries.DeleteMany(r.Context(), bson.M{models.FieldProductID: chi.URLParam(r, "productId")})
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}
