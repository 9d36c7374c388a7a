package collections

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/prestamos/internal/loan"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

func (u Urgency) rank() int {
	switch u {
	case UrgencyCritical:
		return 3
	case UrgencyHigh:
		return 2
	case UrgencyMedium:
		return 1
	}

	return 0
}

// Alert is a collections notice for a single loan.
type Alert struct {
	Severity    Severity
	Urgency     Urgency
	Title       string
	Message     string
	LoanID      uuid.UUID
	ClientName  string
	GeneratedAt time.Time
}

// Key identifies an alert across refreshes. Two alerts with the same key say the
// same thing about the same loan.
func (a Alert) Key() string {
	return a.Title + "\x00" + a.Message + "\x00" + a.LoanID.String()
}

// GenerateAlerts emits one alert per loan that is due soon, overdue or in
// default, most urgent first. Alerts of equal urgency keep the input order.
// No deduplication happens here.
func GenerateAlerts(loans []*loan.Loan, asOf time.Time) []Alert {
	var alerts []Alert

	for _, l := range loans {
		a, ok := alertFor(l, Classify(l, asOf))
		if !ok {
			continue
		}

		a.LoanID = l.ID
		a.ClientName = l.ClientName
		a.GeneratedAt = asOf
		alerts = append(alerts, a)
	}

	slices.SortStableFunc(alerts, func(a, b Alert) int {
		return b.Urgency.rank() - a.Urgency.rank()
	})

	return alerts
}

func alertFor(l *loan.Loan, st State) (Alert, bool) {
	who := borrower(l)

	switch st.Kind {
	case KindDueSoon:
		return Alert{
			Severity: SeverityWarning,
			Urgency:  UrgencyMedium,
			Title:    "Pago próximo a vencer",
			Message:  fmt.Sprintf("La cuota de %s vence en %d día(s)", who, st.DaysRemaining),
		}, true
	case KindOverdue:
		return Alert{
			Severity: SeverityError,
			Urgency:  UrgencyHigh,
			Title:    "Pago vencido",
			Message:  fmt.Sprintf("%s tiene %d día(s) de atraso", who, st.DaysOverdue),
		}, true
	case KindInDefault:
		return Alert{
			Severity: SeverityError,
			Urgency:  UrgencyCritical,
			Title:    "Préstamo en mora",
			Message:  fmt.Sprintf("%s acumula %d día(s) de atraso", who, st.DaysOverdue),
		}, true
	}

	return Alert{}, false
}

func borrower(l *loan.Loan) string {
	if l.ClientName != "" {
		return l.ClientName
	}

	id := l.ID.String()

	return "préstamo " + id[:8]
}
