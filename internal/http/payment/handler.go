package payment

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
	"github.com/MrJamesThe3rd/prestamos/internal/importer"
	"github.com/MrJamesThe3rd/prestamos/internal/loan"
	"github.com/MrJamesThe3rd/prestamos/internal/payment"
)

const maxUploadSize = 10 << 20

type Handler struct {
	svc       *payment.Service
	importSvc *importer.Service
}

func NewHandler(svc *payment.Service, importSvc *importer.Service) *Handler {
	return &Handler{svc: svc, importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Post("/import", h.importFile)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
}

type createPaymentRequest struct {
	LoanID       uuid.UUID        `json:"loan_id"`
	Amount       decimal.Decimal  `json:"amount"`
	Currency     loan.Currency    `json:"currency"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate,omitempty"`
	PaymentDate  string           `json:"payment_date"`
	Reference    string           `json:"reference"`
	Notes        string           `json:"notes"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params := payment.CreateParams{
		LoanID:       req.LoanID,
		Amount:       req.Amount,
		Currency:     req.Currency,
		ExchangeRate: req.ExchangeRate,
		Reference:    req.Reference,
		Notes:        req.Notes,
	}

	if req.PaymentDate != "" {
		d, err := collections.ParseDate(req.PaymentDate)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		params.PaymentDate = d
	}

	p, err := h.svc.Register(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := payment.ListFilter{}
	q := r.URL.Query()

	if s := q.Get("loan_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid loan_id", http.StatusBadRequest)
			return
		}

		filter.LoanID = &id
	}

	for param, dst := range map[string]**time.Time{
		"start_date": &filter.StartDate,
		"end_date":   &filter.EndDate,
	} {
		s := q.Get(param)
		if s == "" {
			continue
		}

		d, err := collections.ParseDate(s)
		if err != nil {
			http.Error(w, param+": "+err.Error(), http.StatusBadRequest)
			return
		}

		*dst = &d
	}

	ps, err := h.svc.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponseList(ps))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(p))
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

// importFile registers every payment in an uploaded spreadsheet. Rows already
// recorded are skipped and listed in the response.
func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(importer.Format(r.FormValue("format")), file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.RegisterBatch(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toImportResponse(result))
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, payment.ErrNotFound):
		http.Error(w, "payment not found", http.StatusNotFound)
	case errors.Is(err, loan.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, payment.ErrLoanClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, payment.ErrInvalidCurrency),
		errors.Is(err, payment.ErrMissingDate),
		errors.Is(err, payment.ErrMissingRate):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("payment request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
