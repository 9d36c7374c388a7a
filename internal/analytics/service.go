package analytics

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/prestamos/internal/client"
	"github.com/MrJamesThe3rd/prestamos/internal/collections"
	"github.com/MrJamesThe3rd/prestamos/internal/loan"
	"github.com/MrJamesThe3rd/prestamos/internal/payment"
)

type LoanLister interface {
	List(ctx context.Context, filter loan.ListFilter) ([]*loan.Loan, error)
}

type PaymentLister interface {
	List(ctx context.Context, filter payment.ListFilter) ([]*payment.Payment, error)
}

type ClientLister interface {
	List(ctx context.Context, filter client.ListFilter) ([]*client.Client, error)
}

// RateSource supplies the current VES-per-USD rate. Satisfied by *rates.Service.
type RateSource interface {
	CurrentRate(ctx context.Context) (decimal.Decimal, error)
}

type Service struct {
	loans    LoanLister
	payments PaymentLister
	clients  ClientLister
	rates    RateSource
	clock    collections.Clock
}

func NewService(loans LoanLister, payments PaymentLister, clients ClientLister, rates RateSource, clock collections.Clock) *Service {
	return &Service{
		loans:    loans,
		payments: payments,
		clients:  clients,
		rates:    rates,
		clock:    clock,
	}
}

func (s *Service) Projection(ctx context.Context, months int) ([]MonthlyProjection, error) {
	status := loan.StatusActive

	loans, err := s.loans.List(ctx, loan.ListFilter{Status: &status})
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}

	return ProjectIncome(loans, s.clock.Now(), months), nil
}

func (s *Service) Trends(ctx context.Context, months int) ([]MonthlyTrend, error) {
	now := s.clock.Now()
	if months <= 0 {
		return AnalyzeTrends(nil, decimal.Zero, now, months), nil
	}

	rate, err := s.rates.CurrentRate(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting exchange rate: %w", err)
	}

	from := monthStart(now).AddDate(0, -(months - 1), 0)

	payments, err := s.payments.List(ctx, payment.ListFilter{StartDate: &from})
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}

	return AnalyzeTrends(payments, rate, now, months), nil
}

func (s *Service) Ranking(ctx context.Context, limit int) ([]RankedClient, error) {
	clients, err := s.clients.List(ctx, client.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}

	loans, err := s.loans.List(ctx, loan.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}

	payments, err := s.payments.List(ctx, payment.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}

	return RankClients(clients, loans, payments, limit), nil
}

func (s *Service) Distribution(ctx context.Context) ([]BucketCount, error) {
	rate, err := s.rates.CurrentRate(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting exchange rate: %w", err)
	}

	loans, err := s.loans.List(ctx, loan.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}

	return DistributeByAmount(loans, rate), nil
}
