package payments

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/reshop/server/internal/auth"
	"github.com/reshop/server/internal/httpx"
	"github.com/reshop/server/internal/middleware"
	"github.com/reshop/server/internal/models"
)

// maxAmount is the largest charge Stripe accepts, in the smallest currency unit.
const maxAmount = 99_999_999

// Processor creates payment intents at an external payment provider.
type Processor interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (*Intent, error)
}

// Ledger keeps a local record of created intents.
type Ledger interface {
	Record(ctx context.Context, rec models.PaymentRecord) error
	ListByEmail(ctx context.Context, email string) ([]models.PaymentRecord, error)
}

// Handler holds payment HTTP handlers.
type Handler struct {
	processor Processor
	ledger    Ledger
	currency  string
	log       *slog.Logger
}

func NewHandler(processor Processor, ledger Ledger, currency string, log *slog.Logger) *Handler {
	return &Handler{processor: processor, ledger: ledger, currency: currency, log: log}
}

// CreateIntent converts the posted price to the smallest currency unit and
// returns the processor's client secret. Prices that round to nothing or past
// maxAmount are rejected before the processor is called.
func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentIntentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	cents := math.Round(req.Price * 100)
	if !(cents >= 1 && cents <= maxAmount) {
		httpx.RespondError(w, r, h.log, fmt.Errorf("%w: price %v out of range", httpx.ErrBadRequest, req.Price))
		return
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = h.currency
	}
	amount := int64(cents)

	intent, err := h.processor.CreateIntent(r.Context(), amount, currency)
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}

	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		rec := models.PaymentRecord{ID: intent.ID, Email: claims.Email, Amount: amount, Currency: currency}
		// The intent already exists at the processor; a ledger miss is not the client's problem.
		if err := h.ledger.Record(r.Context(), rec); err != nil {
			h.log.WarnContext(r.Context(), "payment ledger write failed",
				slog.String("intent_id", intent.ID),
				slog.Any("error", err),
			)
		}
	}

	httpx.JSON(w, http.StatusOK, models.PaymentIntentResponse{ClientSecret: intent.ClientSecret})
}

// History returns the caller's recorded payment intents.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if err := middleware.AssertOwner(r.Context(), email); err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	recs, err := h.ledger.ListByEmail(r.Context(), email)
	if err != nil {
		httpx.RespondError(w, r, h.log, err)
		return
	}
	if recs == nil {
		recs = []models.PaymentRecord{}
	}
	httpx.JSON(w, http.StatusOK, recs)
}
