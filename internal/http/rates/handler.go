package rates

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/prestamos/internal/rates"
)

type Handler struct {
	svc *rates.Service
}

func NewHandler(svc *rates.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.record)
	r.Get("/", h.history)
	r.Get("/current", h.current)
}

type recordRateRequest struct {
	Rate        decimal.Decimal `json:"rate"`
	Source      string          `json:"source"`
	EffectiveAt *time.Time      `json:"effective_at,omitempty"`
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	var req recordRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := rates.RecordParams{Rate: req.Rate, Source: req.Source}
	if req.EffectiveAt != nil {
		params.EffectiveAt = *req.EffectiveAt
	}

	rate, err := h.svc.Record(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, rate)
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	rate, err := h.svc.Current(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rate)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	limit := 0

	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}

		limit = n
	}

	rs, err := h.svc.History(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	if rs == nil {
		rs = []*rates.ExchangeRate{}
	}

	writeJSON(w, http.StatusOK, rs)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rates.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, rates.ErrInvalidRate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("rate request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
