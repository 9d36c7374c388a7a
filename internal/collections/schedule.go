// Package collections classifies loans by how urgently they need collecting and
// aggregates those classifications into alerts and portfolio metrics.
//
// Every function here is a pure projection of a loan list at a given date. The
// as-of date is always passed in; nothing reads the wall clock except Clock.
package collections

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/prestamos/internal/loan"
)

var ErrInvalidDate = errors.New("invalid date")

// ParseDate parses a YYYY-MM-DD date. Malformed input is an error, never "today".
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDate, s)
	}

	return t, nil
}

// NextDueDate projects the next installment date from the time elapsed since the
// loan started. It returns nil when the loan has no start date.
//
// The schedule rolls: the result is always the next period boundary after asOf,
// capped at the contract end date. It does not look at which installments were
// actually paid, see EarliestUnpaidDueDate for that reading.
func NextDueDate(l *loan.Loan, asOf time.Time) *time.Time {
	if l.StartDate == nil {
		return nil
	}

	start := loan.Day(*l.StartDate)
	period := l.Frequency.PeriodDays()

	elapsed := loan.DaysBetween(start, asOf)

	periods := floorDiv(elapsed, period)
	if periods < 0 {
		periods = 0
	}

	next := start.AddDate(0, 0, (periods+1)*period)

	if l.EndDate != nil {
		end := loan.Day(*l.EndDate)
		if next.After(end) {
			return &end
		}
	}

	return &next
}

// EarliestUnpaidDueDate is the due date of the first installment not yet covered
// by payments, assuming payments settle installments in order. Nil when the loan
// has no start date or no installment amount.
func EarliestUnpaidDueDate(l *loan.Loan) *time.Time {
	if l.StartDate == nil || !l.InstallmentAmount.IsPositive() {
		return nil
	}

	paid := l.TotalPayable.Sub(l.OutstandingBalance)
	if paid.IsNegative() {
		paid = decimal.Zero
	}

	covered := int(paid.Div(l.InstallmentAmount).Floor().IntPart())

	start := loan.Day(*l.StartDate)
	due := start.AddDate(0, 0, (covered+1)*l.Frequency.PeriodDays())

	if l.EndDate != nil {
		end := loan.Day(*l.EndDate)
		if due.After(end) {
			return &end
		}
	}

	return &due
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}

	return q
}
