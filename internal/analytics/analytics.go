// Package analytics derives portfolio reports from loans, payments and the
// VES-per-USD exchange rate. Every function here is pure and leaves its inputs untouched.
package analytics

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/prestamos/internal/client"
	"github.com/MrJamesThe3rd/prestamos/internal/loan"
	"github.com/MrJamesThe3rd/prestamos/internal/payment"
)

var hundred = decimal.NewFromInt(100)

// MonthlyProjection is the income expected in one calendar month, per currency.
type MonthlyProjection struct {
	Month time.Time
	USD   decimal.Decimal
	VES   decimal.Decimal
}

// ProjectIncome estimates income for monthsAhead calendar months starting with
// the month of asOf. Each active loan whose dates overlap a month contributes
// its installment amount times its installments per month.
func ProjectIncome(loans []*loan.Loan, asOf time.Time, monthsAhead int) []MonthlyProjection {
	if monthsAhead <= 0 {
		return []MonthlyProjection{}
	}

	first := monthStart(asOf)
	out := make([]MonthlyProjection, monthsAhead)

	for i := range out {
		month := first.AddDate(0, i, 0)
		last := month.AddDate(0, 1, -1)

		p := MonthlyProjection{Month: month}

		for _, l := range loans {
			if l.Status != loan.StatusActive || l.StartDate == nil {
				continue
			}

			if loan.Day(*l.StartDate).After(last) {
				continue
			}

			if l.EndDate != nil && loan.Day(*l.EndDate).Before(month) {
				continue
			}

			amount := l.InstallmentAmount.Mul(decimal.NewFromInt(int64(l.Frequency.InstallmentsPerMonth())))

			switch l.Currency {
			case loan.CurrencyUSD:
				p.USD = p.USD.Add(amount)
			case loan.CurrencyVES:
				p.VES = p.VES.Add(amount)
			}
		}

		out[i] = p
	}

	return out
}

// MonthlyTrend summarises the payments received in one calendar month.
type MonthlyTrend struct {
	Month time.Time
	USD   decimal.Decimal
	VES   decimal.Decimal
	Count int
	// CombinedUSD is USD plus VES converted at the supplied rate.
	CombinedUSD decimal.Decimal
}

// AnalyzeTrends buckets payments over the monthsBack calendar months ending
// with the month of asOf, oldest first. Payments outside the window are ignored.
// A rate of zero or less leaves VES out of CombinedUSD.
func AnalyzeTrends(payments []*payment.Payment, rate decimal.Decimal, asOf time.Time, monthsBack int) []MonthlyTrend {
	if monthsBack <= 0 {
		return []MonthlyTrend{}
	}

	first := monthStart(asOf).AddDate(0, -(monthsBack - 1), 0)
	out := make([]MonthlyTrend, monthsBack)
	index := make(map[time.Time]int, monthsBack)

	for i := range out {
		out[i].Month = first.AddDate(0, i, 0)
		index[out[i].Month] = i
	}

	for _, p := range payments {
		i, ok := index[monthStart(p.PaymentDate)]
		if !ok {
			continue
		}

		switch p.Currency {
		case loan.CurrencyUSD:
			out[i].USD = out[i].USD.Add(p.Amount)
		case loan.CurrencyVES:
			out[i].VES = out[i].VES.Add(p.Amount)
		default:
			continue
		}

		out[i].Count++
	}

	for i := range out {
		out[i].CombinedUSD = out[i].USD.Add(toUSD(out[i].VES, rate))
	}

	return out
}

// RankedClient is a client's lending history and how well it paid off.
type RankedClient struct {
	ClientID      uuid.UUID
	Name          string
	LoanCount     int
	TotalLent     decimal.Decimal
	TotalInterest decimal.Decimal
	TotalPaid     decimal.Decimal
	Profitability float64 // (paid - lent) / lent, in percent
	PaymentRate   float64 // paid / (lent + interest), in percent
	Score         float64
}

// RankClients scores every client by 0.6 x profitability + 0.4 x payment rate,
// best first, keeping the input order on ties. limit <= 0 returns everyone.
// Amounts are summed as stored, without currency conversion.
func RankClients(clients []*client.Client, loans []*loan.Loan, payments []*payment.Payment, limit int) []RankedClient {
	owner := make(map[uuid.UUID]uuid.UUID, len(loans))
	ranked := make([]RankedClient, len(clients))
	byClient := make(map[uuid.UUID]*RankedClient, len(clients))

	for i, c := range clients {
		ranked[i] = RankedClient{ClientID: c.ID, Name: c.Name}
		byClient[c.ID] = &ranked[i]
	}

	for _, l := range loans {
		owner[l.ID] = l.ClientID

		r, ok := byClient[l.ClientID]
		if !ok {
			continue
		}

		r.LoanCount++
		r.TotalLent = r.TotalLent.Add(l.Principal)
		r.TotalInterest = r.TotalInterest.Add(l.TotalPayable.Sub(l.Principal))
	}

	for _, p := range payments {
		r, ok := byClient[owner[p.LoanID]]
		if !ok {
			continue
		}

		r.TotalPaid = r.TotalPaid.Add(p.AppliedAmount)
	}

	for i := range ranked {
		r := &ranked[i]

		r.Profitability = percent(r.TotalPaid.Sub(r.TotalLent), r.TotalLent)
		r.PaymentRate = percent(r.TotalPaid, r.TotalLent.Add(r.TotalInterest))
		r.Score = 0.6*r.Profitability + 0.4*r.PaymentRate
	}

	slices.SortStableFunc(ranked, func(a, b RankedClient) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}

		return 0
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}

// BucketCount is the number of loans, and their summed USD-equivalent
// principal, within [Min, Max). A nil Max is unbounded.
type BucketCount struct {
	Label  string
	Min    decimal.Decimal
	Max    *decimal.Decimal
	Count  int
	Amount decimal.Decimal
}

var bucketBounds = []int64{0, 100, 500, 1000, 5000}

// DistributeByAmount groups loans by USD-equivalent principal. VES principals
// are divided by rate; with a rate of zero or less they cannot be placed and are
// left out. All five buckets are always returned, in ascending order.
func DistributeByAmount(loans []*loan.Loan, rate decimal.Decimal) []BucketCount {
	buckets := make([]BucketCount, len(bucketBounds))

	for i, lo := range bucketBounds {
		b := BucketCount{Min: decimal.NewFromInt(lo)}

		if i+1 < len(bucketBounds) {
			hi := decimal.NewFromInt(bucketBounds[i+1])
			b.Max = &hi
			b.Label = b.Min.String() + "-" + hi.String()
		} else {
			b.Label = b.Min.String() + "+"
		}

		buckets[i] = b
	}

	for _, l := range loans {
		usd := l.Principal
		if l.Currency == loan.CurrencyVES {
			if !rate.IsPositive() {
				continue
			}

			usd = toUSD(l.Principal, rate)
		}

		i := len(buckets) - 1
		for i > 0 && usd.LessThan(buckets[i].Min) {
			i--
		}

		buckets[i].Count++
		buckets[i].Amount = buckets[i].Amount.Add(usd)
	}

	return buckets
}

func toUSD(ves, rate decimal.Decimal) decimal.Decimal {
	if !rate.IsPositive() {
		return decimal.Zero
	}

	return ves.Div(rate)
}

func percent(num, den decimal.Decimal) float64 {
	if den.IsZero() {
		return 0
	}

	return num.Div(den).Mul(hundred).InexactFloat64()
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
