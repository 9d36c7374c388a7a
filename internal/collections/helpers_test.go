package collections_test

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/prestamos/internal/loan"
)

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time {
	return &t
}

type option func(*loan.Loan)

func starting(t time.Time) option {
	return func(l *loan.Loan) { l.StartDate = ptr(t) }
}

func ending(t time.Time) option {
	return func(l *loan.Loan) { l.EndDate = ptr(t) }
}

func every(f loan.Frequency) option {
	return func(l *loan.Loan) { l.Frequency = f }
}

func withStatus(s loan.Status) option {
	return func(l *loan.Loan) { l.Status = s }
}

func owing(total, outstanding, installment int64) option {
	return func(l *loan.Loan) {
		l.TotalPayable = decimal.NewFromInt(total)
		l.OutstandingBalance = decimal.NewFromInt(outstanding)
		l.InstallmentAmount = decimal.NewFromInt(installment)
	}
}

func in(c loan.Currency) option {
	return func(l *loan.Loan) { l.Currency = c }
}

func named(name string) option {
	return func(l *loan.Loan) { l.ClientName = name }
}

// newLoan builds an active weekly USD loan of 100 outstanding.
func newLoan(opts ...option) *loan.Loan {
	l := &loan.Loan{
		ID:                 uuid.New(),
		Principal:          decimal.NewFromInt(100),
		TotalPayable:       decimal.NewFromInt(100),
		OutstandingBalance: decimal.NewFromInt(100),
		InstallmentAmount:  decimal.NewFromInt(100),
		Currency:           loan.CurrencyUSD,
		Frequency:          loan.FrequencyWeekly,
		Status:             loan.StatusActive,
	}

	for _, o := range opts {
		o(l)
	}

	return l
}

// Loans in each state as of 2024-01-20.
var asOf = day(2024, 1, 20)

func currentLoan(opts ...option) *loan.Loan {
	return newLoan(append([]option{starting(day(2024, 1, 17))}, opts...)...)
}

func dueSoonLoan(opts ...option) *loan.Loan {
	return newLoan(append([]option{starting(day(2024, 1, 1))}, opts...)...)
}

func overdueLoan(opts ...option) *loan.Loan {
	return newLoan(append([]option{starting(day(2024, 1, 1)), ending(day(2024, 1, 15))}, opts...)...)
}

func inDefaultLoan(opts ...option) *loan.Loan {
	return newLoan(append([]option{starting(day(2023, 12, 1)), ending(day(2024, 1, 5))}, opts...)...)
}

// snapshot deep-copies loans so a later comparison catches in-place changes.
func snapshot(loans []*loan.Loan) []loan.Loan {
	out := make([]loan.Loan, len(loans))
	for i, l := range loans {
		out[i] = *l
		if l.StartDate != nil {
			out[i].StartDate = ptr(*l.StartDate)
		}

		if l.EndDate != nil {
			out[i].EndDate = ptr(*l.EndDate)
		}
	}

	return out
}
