package collections

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/prestamos/internal/loan"
)

// Amounts groups the outstanding balances of a set of loans.
type Amounts struct {
	Outstanding decimal.Decimal
	Overdue     decimal.Decimal
	InDefault   decimal.Decimal
}

// Metrics is a delinquency snapshot of the active portfolio.
type Metrics struct {
	Total     int
	Current   int // al día
	DueSoon   int // por vencer
	Overdue   int // vencidos
	InDefault int // en mora

	// Totals add balances as-is across currencies; ByCurrency keeps them apart.
	OutstandingTotal decimal.Decimal
	OverdueAmount    decimal.Decimal
	InDefaultAmount  decimal.Decimal
	ByCurrency       map[loan.Currency]Amounts

	// DelinquencyRate is the percentage of active loans overdue or in default.
	DelinquencyRate float64
}

// ComputeMetrics aggregates the states of active loans. Paid, overdue-flagged and
// uncollectible loans are left out of every count and amount.
func ComputeMetrics(loans []*loan.Loan, asOf time.Time) Metrics {
	m := Metrics{ByCurrency: make(map[loan.Currency]Amounts)}

	for _, l := range loans {
		if l.Status != loan.StatusActive {
			continue
		}

		m.Total++

		bal := l.OutstandingBalance
		cur := m.ByCurrency[l.Currency]

		m.OutstandingTotal = m.OutstandingTotal.Add(bal)
		cur.Outstanding = cur.Outstanding.Add(bal)

		switch Classify(l, asOf).Kind {
		case KindCurrent:
			m.Current++
		case KindDueSoon:
			m.DueSoon++
		case KindOverdue:
			m.Overdue++
			m.OverdueAmount = m.OverdueAmount.Add(bal)
			cur.Overdue = cur.Overdue.Add(bal)
		case KindInDefault:
			m.InDefault++
			m.InDefaultAmount = m.InDefaultAmount.Add(bal)
			cur.InDefault = cur.InDefault.Add(bal)
		}

		m.ByCurrency[l.Currency] = cur
	}

	if m.Total > 0 {
		m.DelinquencyRate = float64(m.Overdue+m.InDefault) / float64(m.Total) * 100
	}

	return m
}
