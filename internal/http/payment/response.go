package payment

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/prestamos/internal/loan"
	"github.com/MrJamesThe3rd/prestamos/internal/payment"
)

type paymentResponse struct {
	ID                    uuid.UUID        `json:"id"`
	LoanID                uuid.UUID        `json:"loan_id"`
	ClientName            string           `json:"client_name,omitempty"`
	Amount                decimal.Decimal  `json:"amount"`
	Currency              loan.Currency    `json:"currency"`
	ExchangeRateAtPayment *decimal.Decimal `json:"exchange_rate_at_payment,omitempty"`
	AppliedAmount         decimal.Decimal  `json:"applied_amount"`
	PaymentDate           string           `json:"payment_date"`
	Reference             string           `json:"reference,omitempty"`
	Notes                 string           `json:"notes,omitempty"`
	CreatedAt             time.Time        `json:"created_at"`
}

func toResponse(p *payment.Payment) paymentResponse {
	return paymentResponse{
		ID:                    p.ID,
		LoanID:                p.LoanID,
		ClientName:            p.ClientName,
		Amount:                p.Amount,
		Currency:              p.Currency,
		ExchangeRateAtPayment: p.ExchangeRateAtPayment,
		AppliedAmount:         p.AppliedAmount,
		PaymentDate:           p.PaymentDate.Format(time.DateOnly),
		Reference:             p.Reference,
		Notes:                 p.Notes,
		CreatedAt:             p.CreatedAt,
	}
}

func toResponseList(ps []*payment.Payment) []paymentResponse {
	resp := make([]paymentResponse, len(ps))
	for i, p := range ps {
		resp[i] = toResponse(p)
	}

	return resp
}

type paramsDTO struct {
	LoanID       uuid.UUID        `json:"loan_id"`
	Amount       decimal.Decimal  `json:"amount"`
	Currency     loan.Currency    `json:"currency"`
	ExchangeRate *decimal.Decimal `json:"exchange_rate,omitempty"`
	PaymentDate  string           `json:"payment_date"`
	Reference    string           `json:"reference,omitempty"`
}

func toParamsDTO(p payment.CreateParams) paramsDTO {
	return paramsDTO{
		LoanID:       p.LoanID,
		Amount:       p.Amount,
		Currency:     p.Currency,
		ExchangeRate: p.ExchangeRate,
		PaymentDate:  p.PaymentDate.Format(time.DateOnly),
		Reference:    p.Reference,
	}
}

type importResponse struct {
	Imported   int               `json:"imported"`
	Duplicates int               `json:"duplicates"`
	Payments   []paymentResponse `json:"payments"`
	Skipped    []paramsDTO       `json:"skipped"`
}

func toImportResponse(res *payment.ImportResult) importResponse {
	skipped := make([]paramsDTO, len(res.Duplicates))
	for i, d := range res.Duplicates {
		skipped[i] = toParamsDTO(d)
	}

	return importResponse{
		Imported:   len(res.Imported),
		Duplicates: len(res.Duplicates),
		Payments:   toResponseList(res.Imported),
		Skipped:    skipped,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
