package reports

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/reshop/server/internal/httpx"
	"github.com/reshop/server/internal/models"
	"github.com/reshop/server/internal/store"
)

// Handler holds product-report HTTP handlers.
type Handler struct {
	reports store.Documents
	log     *slog.Logger
}

func NewHandler(reports store.Documents, log *slog.Logger) *Handler {
	return &Handler{reports: reports, log: log}
}

// List returns every report. Admin only.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.reports.Find(r.Context(), bson.M{})
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, docs)
}

// Add files a report as-is.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var report bson.M
	if err := httpx.DecodeJSON(r, &report); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	res, err := h.reports.Insert(r.Context(), report)
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

// DeleteByProduct clears all reports against a product. Admin only.
func (h *Handler) DeleteByProduct(w http.ResponseWriter, r *http.Request) {
	res, err := h.reports.DeleteMany(r.Context(), bson.M{models.FieldProductID: chi.URLParam(r, "productId")})
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}
