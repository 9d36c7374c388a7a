package collections

import (
	"context"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/prestamos/internal/loan"
)

// Clock supplies the current instant. Injected so callers decide what "today" is.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}

	return time.Now().In(c.Location)
}

// LoanLister is satisfied by *loan.Service.
type LoanLister interface {
	List(ctx context.Context, filter loan.ListFilter) ([]*loan.Loan, error)
}

// Snapshot is the full collections picture of the portfolio at one date.
type Snapshot struct {
	AsOf      time.Time
	Portfolio []Entry
	Alerts    []Alert
	Metrics   Metrics
}

type Service struct {
	loans LoanLister
	clock Clock
}

func NewService(loans LoanLister, clock Clock) *Service {
	return &Service{loans: loans, clock: clock}
}

// Today is the current calendar date according to the service clock.
func (s *Service) Today() time.Time {
	return loan.Day(s.clock.Now())
}

// Snapshot loads every loan once and derives portfolio, alerts and metrics from it.
// Alerts only cover loans still being collected (active or flagged overdue).
func (s *Service) Snapshot(ctx context.Context, asOf time.Time) (*Snapshot, error) {
	loans, err := s.loans.List(ctx, loan.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}

	return &Snapshot{
		AsOf:      loan.Day(asOf),
		Portfolio: Prioritize(loans, asOf),
		Alerts:    GenerateAlerts(collectible(loans), asOf),
		Metrics:   ComputeMetrics(loans, asOf),
	}, nil
}

func (s *Service) Portfolio(ctx context.Context, asOf time.Time) ([]Entry, error) {
	loans, err := s.loans.List(ctx, loan.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}

	return Prioritize(loans, asOf), nil
}

func (s *Service) Alerts(ctx context.Context, asOf time.Time) ([]Alert, error) {
	loans, err := s.loans.List(ctx, loan.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}

	return GenerateAlerts(collectible(loans), asOf), nil
}

func (s *Service) Metrics(ctx context.Context, asOf time.Time) (Metrics, error) {
	status := loan.StatusActive

	loans, err := s.loans.List(ctx, loan.ListFilter{Status: &status})
	if err != nil {
		return Metrics{}, fmt.Errorf("listing loans: %w", err)
	}

	return ComputeMetrics(loans, asOf), nil
}

func collectible(loans []*loan.Loan) []*loan.Loan {
	out := make([]*loan.Loan, 0, len(loans))
	for _, l := range loans {
		if l.Status == loan.StatusActive || l.Status == loan.StatusOverdue {
			out = append(out, l)
		}
	}

	return out
}
