package products

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

// allCategories is the category value that disables category filtering.
const allCategories = "all"

// Handler holds product HTTP handlers.
type Handler struct {
	products store.Documents
	log      *slog.Logger
}

func NewHandler(products store.Documents, log *slog.Logger) *Handler {
	return &Handler{products: products, log: log}
}

// List returns products, optionally narrowed by ?category= and ?status=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if category := r.URL.Query().Get("category"); category != "" && category != allCategories {
		filter[models.FieldProductCategory] = category
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter[models.FieldStatus] = status
	}
	h.find(w, r, filter)
}

// Advertised returns products flagged for the home page. Older records store
// the flag as the string "true", newer ones as a boolean.
func (h *Handler) Advertised(w http.ResponseWriter, r *http.Request) {
	h.find(w, r, bson.M{models.FieldAdvertised: bson.M{"$in": bson.A{true, "true"}}})
}

// ListBySeller returns the caller's own listings.
func (h *Handler) ListBySeller(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if err := middleware.AssertOwner(r.Context(), email); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	h.find(w, r, bson.M{models.FieldSellerEmail: email})
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request, filter bson.M) {
	docs, err := h.products.Find(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, docs)
}

// Get returns one product by id, or null.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.products.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

// Create inserts the posted product as-is.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var product bson.M
	if err := httpx.DecodeJSON(r, &product); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	res, err := h.products.Insert(r.Context(), product)
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// Update upserts the posted fields onto the product with the path id.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var product bson.M
	if err := httpx.DecodeJSON(r, &product); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	res, err := h.products.UpsertByID(r.Context(), chi.URLParam(r, "id"), product)
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// Delete removes a product by id.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.products.DeleteByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}
