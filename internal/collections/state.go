package collections

import (
	"slices"
	"time"

	"github.com/MrJamesThe3rd/prestamos/internal/loan"
)

const (
	// GraceDays is how long past its due date a loan stays overdue before it is in default.
	GraceDays = 7
	// DueSoonDays is the window before a due date in which a loan is flagged as due soon.
	DueSoonDays = 3
)

// Kind is the collections classification of a loan at a point in time.
type Kind string

const (
	KindPaid       Kind = "paid"
	KindNoSchedule Kind = "no_schedule"
	KindInDefault  Kind = "in_default"
	KindOverdue    Kind = "overdue"
	KindDueSoon    Kind = "due_soon"
	KindCurrent    Kind = "current"
)

// Priority ranks kinds by urgency, higher first.
func (k Kind) Priority() int {
	switch k {
	case KindInDefault:
		return 4
	case KindOverdue:
		return 3
	case KindDueSoon:
		return 2
	case KindCurrent:
		return 1
	}

	return 0
}

var kindLabels = map[Kind]string{
	KindInDefault:  "En mora",
	KindOverdue:    "Vencido",
	KindDueSoon:    "Por vencer",
	KindCurrent:    "Al día",
	KindPaid:       "Pagado",
	KindNoSchedule: "Sin cronograma",
}

// Label is the Spanish name shown to collectors.
func (k Kind) Label() string {
	if l, ok := kindLabels[k]; ok {
		return l
	}

	return string(k)
}

// State is the derived collections state of one loan.
type State struct {
	Kind          Kind
	Priority      int
	DaysOverdue   int
	DaysRemaining int // set for due_soon and current only
	NextDueDate   *time.Time
}

// Classify derives the collections state of l as of the given date.
func Classify(l *loan.Loan, asOf time.Time) State {
	if l.Status == loan.StatusPaid {
		return State{Kind: KindPaid}
	}

	next := NextDueDate(l, asOf)
	if next == nil {
		return State{Kind: KindNoSchedule}
	}

	st := State{NextDueDate: next}

	days := loan.DaysBetween(asOf, *next)

	switch {
	case days < -GraceDays:
		st.Kind = KindInDefault
		st.DaysOverdue = -days
	case days < 0:
		st.Kind = KindOverdue
		st.DaysOverdue = -days
	case days <= DueSoonDays:
		st.Kind = KindDueSoon
		st.DaysRemaining = days
	default:
		st.Kind = KindCurrent
		st.DaysRemaining = days
	}

	st.Priority = st.Kind.Priority()

	return st
}

// Entry pairs a loan with its derived state.
type Entry struct {
	Loan  *loan.Loan
	State State
	// EarliestUnpaid is the strict, payment-aware due date. Informational only;
	// classification uses the rolling schedule.
	EarliestUnpaid *time.Time
}

// Prioritize classifies every loan and orders the result most urgent first.
// Loans with equal priority keep their input order.
func Prioritize(loans []*loan.Loan, asOf time.Time) []Entry {
	entries := make([]Entry, 0, len(loans))
	for _, l := range loans {
		entries = append(entries, Entry{
			Loan:           l,
			State:          Classify(l, asOf),
			EarliestUnpaid: EarliestUnpaidDueDate(l),
		})
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.State.Priority - a.State.Priority
	})

	return entries
}
