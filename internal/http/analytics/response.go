package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/prestamos/internal/analytics"
)

const monthLayout = "2006-01"

type projectionResponse struct {
	Month string          `json:"month"`
	USD   decimal.Decimal `json:"usd"`
	VES   decimal.Decimal `json:"ves"`
}

type trendResponse struct {
	Month       string          `json:"month"`
	USD         decimal.Decimal `json:"usd"`
	VES         decimal.Decimal `json:"ves"`
	Count       int             `json:"count"`
	CombinedUSD decimal.Decimal `json:"combined_usd"`
}

type rankedClientResponse struct {
	ClientID      uuid.UUID       `json:"client_id"`
	Name          string          `json:"name"`
	LoanCount     int             `json:"loan_count"`
	TotalLent     decimal.Decimal `json:"total_lent"`
	TotalInterest decimal.Decimal `json:"total_interest"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	Profitability float64         `json:"profitability"`
	PaymentRate   float64         `json:"payment_rate"`
	Score         float64         `json:"score"`
}

type bucketResponse struct {
	Label  string           `json:"label"`
	Min    decimal.Decimal  `json:"min"`
	Max    *decimal.Decimal `json:"max,omitempty"`
	Count  int              `json:"count"`
	Amount decimal.Decimal  `json:"amount_usd"`
}

func toProjections(ps []analytics.MonthlyProjection) []projectionResponse {
	resp := make([]projectionResponse, len(ps))
	for i, p := range ps {
		resp[i] = projectionResponse{Month: p.Month.Format(monthLayout), USD: p.USD, VES: p.VES}
	}

	return resp
}

func toTrends(ts []analytics.MonthlyTrend) []trendResponse {
	resp := make([]trendResponse, len(ts))
	for i, t := range ts {
		resp[i] = trendResponse{
			Month:       t.Month.Format(monthLayout),
			USD:         t.USD,
			VES:         t.VES,
			Count:       t.Count,
			CombinedUSD: t.CombinedUSD,
		}
	}

	return resp
}

func toRanking(rs []analytics.RankedClient) []rankedClientResponse {
	resp := make([]rankedClientResponse, len(rs))
	for i, r := range rs {
		resp[i] = rankedClientResponse(r)
	}

	return resp
}

func toBuckets(bs []analytics.BucketCount) []bucketResponse {
	resp := make([]bucketResponse, len(bs))
	for i, b := range bs {
		resp[i] = bucketResponse(b)
	}

	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
