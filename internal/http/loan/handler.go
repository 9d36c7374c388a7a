package loan

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/prestamos/internal/collections"
	"github.com/MrJamesThe3rd/prestamos/internal/loan"
)

type Handler struct {
	svc *loan.Service
}

func NewHandler(svc *loan.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/status", h.updateStatus)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type createLoanRequest struct {
	ClientID              uuid.UUID       `json:"client_id"`
	Principal             decimal.Decimal `json:"principal"`
	InterestRate          decimal.Decimal `json:"interest_rate"`
	Currency              loan.Currency   `json:"currency"`
	Frequency             loan.Frequency  `json:"frequency"`
	StartDate             *string         `json:"start_date,omitempty"`
	EndDate               *string         `json:"end_date,omitempty"`
	HasCollateral         bool            `json:"has_collateral"`
	CollateralDescription string          `json:"collateral_description"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.ClientID == uuid.Nil {
		http.Error(w, "client_id is required", http.StatusBadRequest)
		return
	}

	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	l, err := h.svc.Create(r.Context(), loan.CreateParams{
		ClientID:              req.ClientID,
		Principal:             req.Principal,
		InterestRate:          req.InterestRate,
		Currency:              req.Currency,
		Frequency:             req.Frequency,
		StartDate:             start,
		EndDate:               end,
		HasCollateral:         req.HasCollateral,
		CollateralDescription: req.CollateralDescription,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(l))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := loan.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(loan.Status(s))
	}

	if s := r.URL.Query().Get("currency"); s != "" {
		filter.Currency = new(loan.Currency(s))
	}

	if s := r.URL.Query().Get("client_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid client_id", http.StatusBadRequest)
			return
		}

		filter.ClientID = &id
	}

	ls, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(ls))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	l, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(l))
}

// updateLoanRequest only covers schedule and collateral. Amounts change through
// payments, status through its own endpoint.
type updateLoanRequest struct {
	Frequency             *loan.Frequency `json:"frequency,omitempty"`
	StartDate             *string         `json:"start_date,omitempty"`
	EndDate               *string         `json:"end_date,omitempty"`
	HasCollateral         *bool           `json:"has_collateral,omitempty"`
	CollateralDescription *string         `json:"collateral_description,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	l, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	if req.Frequency != nil {
		l.Frequency = *req.Frequency
	}

	if start != nil {
		l.StartDate = start
	}

	if end != nil {
		l.EndDate = end
	}

	if req.HasCollateral != nil {
		l.HasCollateral = *req.HasCollateral
	}

	if req.CollateralDescription != nil {
		l.CollateralDescription = *req.CollateralDescription
	}

	if err := h.svc.Update(r.Context(), l); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(l))
}

type updateStatusRequest struct {
	Status loan.Status `json:"status"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.svc.UpdateStatus(r.Context(), id, req.Status); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}

	t, err := collections.ParseDate(*s)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, loan.ErrNotFound):
		http.Error(w, "loan not found", http.StatusNotFound)
	case errors.Is(err, loan.ErrInvalidPrincipal),
		errors.Is(err, loan.ErrInvalidRate),
		errors.Is(err, loan.ErrInvalidCurrency),
		errors.Is(err, loan.ErrInvalidFrequency),
		errors.Is(err, loan.ErrInvalidStatus),
		errors.Is(err, loan.ErrInvalidDates):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("loan request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
