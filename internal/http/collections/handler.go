package collections

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/prestamos/internal/collections"
)

type Handler struct {
	svc *collections.Service
}

func NewHandler(svc *collections.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/snapshot", h.snapshot)
	r.Get("/portfolio", h.portfolio)
	r.Get("/alerts", h.alerts)
	r.Get("/metrics", h.metrics)
}

// asOf reads the optional as_of query parameter, defaulting to today.
func (h *Handler) asOf(r *http.Request) (time.Time, error) {
	s := r.URL.Query().Get("as_of")
	if s == "" {
		return h.svc.Today(), nil
	}

	return collections.ParseDate(s)
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	snap, err := h.svc.Snapshot(r.Context(), asOf)
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshotResponse{
		AsOf:      snap.AsOf.Format(time.DateOnly),
		Portfolio: toEntries(snap.Portfolio),
		Alerts:    toAlerts(snap.Alerts),
		Metrics:   toMetrics(snap.Metrics),
	})
}

func (h *Handler) portfolio(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	entries, err := h.svc.Portfolio(r.Context(), asOf)
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toEntries(entries))
}

func (h *Handler) alerts(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	alerts, err := h.svc.Alerts(r.Context(), asOf)
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toAlerts(alerts))
}

func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	asOf, err := h.asOf(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	m, err := h.svc.Metrics(r.Context(), asOf)
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMetrics(m))
}

func internalError(w http.ResponseWriter, err error) {
	slog.Error("collections request failed", "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
