package loan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is the currency a loan is denominated in.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyVES Currency = "VES" // shown as "Bs"
)

func (c Currency) Valid() bool {
	return c == CurrencyUSD || c == CurrencyVES
}

// Frequency is how often an installment falls due.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}

	return false
}

// PeriodDays is the fixed length of one installment period. Months are 30 days.
// Unknown frequencies are treated as weekly.
func (f Frequency) PeriodDays() int {
	switch f {
	case FrequencyBiweekly:
		return 15
	case FrequencyMonthly:
		return 30
	}

	return 7
}

// InstallmentsPerMonth approximates how many installments fall in a calendar month.
func (f Frequency) InstallmentsPerMonth() int {
	switch f {
	case FrequencyBiweekly:
		return 2
	case FrequencyMonthly:
		return 1
	}

	return 4
}

// Status is the coarse lifecycle flag of a loan.
type Status string

const (
	StatusActive        Status = "active"
	StatusPaid          Status = "paid"
	StatusOverdue       Status = "overdue"
	StatusUncollectible Status = "uncollectible"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPaid, StatusOverdue, StatusUncollectible:
		return true
	}

	return false
}

// Loan is a loan granted to a client.
type Loan struct {
	ID                    uuid.UUID
	ClientID              uuid.UUID
	ClientName            string // Loaded via JOIN
	Principal             decimal.Decimal
	InterestRate          decimal.Decimal // Percentage over principal
	TotalPayable          decimal.Decimal
	OutstandingBalance    decimal.Decimal
	InstallmentAmount     decimal.Decimal
	Currency              Currency
	Frequency             Frequency
	StartDate             *time.Time
	EndDate               *time.Time
	Status                Status
	HasCollateral         bool
	CollateralDescription string
	CreatedAt             time.Time
	UpdatedAt             *time.Time
	DeletedAt             *time.Time
}

// Interest is the amount charged on top of the principal.
func (l *Loan) Interest() decimal.Decimal {
	return l.TotalPayable.Sub(l.Principal)
}

// TotalPayable applies a percentage rate to the principal.
func TotalPayable(principal, ratePct decimal.Decimal) decimal.Decimal {
	return principal.Add(principal.Mul(ratePct).Div(decimal.NewFromInt(100))).Round(2)
}

// Installments is the number of installments between start and end, at least one.
// A loan without both dates is a single installment.
func Installments(start, end *time.Time, f Frequency) int {
	if start == nil || end == nil {
		return 1
	}

	n := DaysBetween(*start, *end) / f.PeriodDays()
	if n < 1 {
		return 1
	}

	return n
}

// DaysBetween counts calendar days from a to b, ignoring the time of day.
// The result is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)) / (24 * time.Hour))
}

// Day strips the clock from t, keeping the calendar date as seen in t's location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
