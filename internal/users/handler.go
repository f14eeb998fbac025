package users

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

// Handler holds user-record HTTP handlers.
type Handler struct {
	users store.Documents
	log   *slog.Logger
}

func NewHandler(users store.Documents, log *slog.Logger) *Handler {
	return &Handler{users: users, log: log}
}

// List returns every user. Admin only.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.users.Find(r.Context(), bson.M{})
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, docs)
}

// Get returns the caller's own user record.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if err := middleware.AssertOwner(r.Context(), email); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	h.findByEmail(w, r, email)
}

// Seller returns the record for any email so buyers can see a seller's
// verification status. Public.
func (h *Handler) Seller(w http.ResponseWriter, r *http.Request) {
	h.findByEmail(w, r, chi.URLParam(r, "email"))
}

func (h *Handler) findByEmail(w http.ResponseWriter, r *http.Request, email string) {
	doc, err := h.users.FindOne(r.Context(), bson.M{models.FieldEmail: email})
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

// Delete removes a user by id. Admin only.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.users.DeleteByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}
