package collections

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/prestamos/internal/collections"
	"github.com/MrJamesThe3rd/prestamos/internal/loan"
)

type entryResponse struct {
	LoanID             uuid.UUID        `json:"loan_id"`
	ClientID           uuid.UUID        `json:"client_id"`
	ClientName         string           `json:"client_name"`
	Currency           loan.Currency    `json:"currency"`
	OutstandingBalance decimal.Decimal  `json:"outstanding_balance"`
	InstallmentAmount  decimal.Decimal  `json:"installment_amount"`
	Status             loan.Status      `json:"status"`
	State              collections.Kind `json:"state"`
	Priority           int              `json:"priority"`
	DaysOverdue        int              `json:"days_overdue"`
	DaysRemaining      int              `json:"days_remaining"`
	NextDueDate        string           `json:"next_due_date,omitempty"`
	EarliestUnpaid     string           `json:"earliest_unpaid_due_date,omitempty"`
}

type alertResponse struct {
	Key         string               `json:"key"`
	Severity    collections.Severity `json:"severity"`
	Urgency     collections.Urgency  `json:"urgency"`
	Title       string               `json:"title"`
	Message     string               `json:"message"`
	LoanID      uuid.UUID            `json:"loan_id"`
	ClientName  string               `json:"client_name"`
	GeneratedAt string               `json:"generated_at"`
}

type amountsResponse struct {
	Outstanding decimal.Decimal `json:"outstanding"`
	Overdue     decimal.Decimal `json:"overdue"`
	InDefault   decimal.Decimal `json:"in_default"`
}

type metricsResponse struct {
	Total            int                               `json:"total"`
	Current          int                               `json:"current"`
	DueSoon          int                               `json:"due_soon"`
	Overdue          int                               `json:"overdue"`
	InDefault        int                               `json:"in_default"`
	OutstandingTotal decimal.Decimal                   `json:"outstanding_total"`
	OverdueAmount    decimal.Decimal                   `json:"overdue_amount"`
	InDefaultAmount  decimal.Decimal                   `json:"in_default_amount"`
	ByCurrency       map[loan.Currency]amountsResponse `json:"by_currency"`
	DelinquencyRate  float64                           `json:"delinquency_rate"`
}

type snapshotResponse struct {
	AsOf      string          `json:"as_of"`
	Portfolio []entryResponse `json:"portfolio"`
	Alerts    []alertResponse `json:"alerts"`
	Metrics   metricsResponse `json:"metrics"`
}

func toEntries(es []collections.Entry) []entryResponse {
	resp := make([]entryResponse, len(es))
	for i, e := range es {
		resp[i] = entryResponse{
			LoanID:             e.Loan.ID,
			ClientID:           e.Loan.ClientID,
			ClientName:         e.Loan.ClientName,
			Currency:           e.Loan.Currency,
			OutstandingBalance: e.Loan.OutstandingBalance,
			InstallmentAmount:  e.Loan.InstallmentAmount,
			Status:             e.Loan.Status,
			State:              e.State.Kind,
			Priority:           e.State.Priority,
			DaysOverdue:        e.State.DaysOverdue,
			DaysRemaining:      e.State.DaysRemaining,
			NextDueDate:        formatDate(e.State.NextDueDate),
			EarliestUnpaid:     formatDate(e.EarliestUnpaid),
		}
	}

	return resp
}

func toAlerts(as []collections.Alert) []alertResponse {
	resp := make([]alertResponse, len(as))
	for i, a := range as {
		resp[i] = alertResponse{
			Key:         a.Key(),
			Severity:    a.Severity,
			Urgency:     a.Urgency,
			Title:       a.Title,
			Message:     a.Message,
			LoanID:      a.LoanID,
			ClientName:  a.ClientName,
			GeneratedAt: a.GeneratedAt.Format(time.DateOnly),
		}
	}

	return resp
}

func toMetrics(m collections.Metrics) metricsResponse {
	byCurrency := make(map[loan.Currency]amountsResponse, len(m.ByCurrency))
	for c, a := range m.ByCurrency {
		byCurrency[c] = amountsResponse(a)
	}

	return metricsResponse{
		Total:            m.Total,
		Current:          m.Current,
		DueSoon:          m.DueSoon,
		Overdue:          m.Overdue,
		InDefault:        m.InDefault,
		OutstandingTotal: m.OutstandingTotal,
		OverdueAmount:    m.OverdueAmount,
		InDefaultAmount:  m.InDefaultAmount,
		ByCurrency:       byCurrency,
		DelinquencyRate:  m.DelinquencyRate,
	}
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
