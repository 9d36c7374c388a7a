package analytics

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/prestamos/internal/analytics"
	"github.com/MrJamesThe3rd/prestamos/internal/rates"
)

const (
	defaultMonths = 6
	maxMonths     = 36
	defaultLimit  = 10
)

type Handler struct {
	svc *analytics.Service
}

func NewHandler(svc *analytics.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/projection", h.projection)
	r.Get("/trends", h.trends)
	r.Get("/ranking", h.ranking)
	r.Get("/distribution", h.distribution)
}

func (h *Handler) projection(w http.ResponseWriter, r *http.Request) {
	months, err := intParam(r, "months", defaultMonths, maxMonths)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ps, err := h.svc.Projection(r.Context(), months)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProjections(ps))
}

func (h *Handler) trends(w http.ResponseWriter, r *http.Request) {
	months, err := intParam(r, "months", defaultMonths, maxMonths)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ts, err := h.svc.Trends(r.Context(), months)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTrends(ts))
}

func (h *Handler) ranking(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultLimit, 0)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	rs, err := h.svc.Ranking(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toRanking(rs))
}

func (h *Handler) distribution(w http.ResponseWriter, r *http.Request) {
	bs, err := h.svc.Distribution(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBuckets(bs))
}

// intParam reads a non-negative integer query parameter. ceiling > 0 caps it.
func intParam(r *http.Request, name string, def, ceiling int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}

	if ceiling > 0 && n > ceiling {
		n = ceiling
	}

	return n, nil
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, rates.ErrNotFound) {
		http.Error(w, "no exchange rate recorded yet", http.StatusServiceUnavailable)
		return
	}

	slog.Error("analytics request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
