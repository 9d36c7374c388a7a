package loan

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/prestamos/internal/loan"
)

type loanResponse struct {
	ID                    uuid.UUID       `json:"id"`
	ClientID              uuid.UUID       `json:"client_id"`
	ClientName            string          `json:"client_name,omitempty"`
	Principal             decimal.Decimal `json:"principal"`
	InterestRate          decimal.Decimal `json:"interest_rate"`
	TotalPayable          decimal.Decimal `json:"total_payable"`
	OutstandingBalance    decimal.Decimal `json:"outstanding_balance"`
	InstallmentAmount     decimal.Decimal `json:"installment_amount"`
	Currency              loan.Currency   `json:"currency"`
	Frequency             loan.Frequency  `json:"frequency"`
	StartDate             string          `json:"start_date,omitempty"`
	EndDate               string          `json:"end_date,omitempty"`
	Status                loan.Status     `json:"status"`
	HasCollateral         bool            `json:"has_collateral"`
	CollateralDescription string          `json:"collateral_description,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             *time.Time      `json:"updated_at,omitempty"`
}

func toResponse(l *loan.Loan) loanResponse {
	return loanResponse{
		ID:                    l.ID,
		ClientID:              l.ClientID,
		ClientName:            l.ClientName,
		Principal:             l.Principal,
		InterestRate:          l.InterestRate,
		TotalPayable:          l.TotalPayable,
		OutstandingBalance:    l.OutstandingBalance,
		InstallmentAmount:     l.InstallmentAmount,
		Currency:              l.Currency,
		Frequency:             l.Frequency,
		StartDate:             formatDate(l.StartDate),
		EndDate:               formatDate(l.EndDate),
		Status:                l.Status,
		HasCollateral:         l.HasCollateral,
		CollateralDescription: l.CollateralDescription,
		CreatedAt:             l.CreatedAt,
		UpdatedAt:             l.UpdatedAt,
	}
}

func toResponseList(ls []*loan.Loan) []loanResponse {
	resp := make([]loanResponse, len(ls))
	for i, l := range ls {
		resp[i] = toResponse(l)
	}

	return resp
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format(time.DateOnly)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
