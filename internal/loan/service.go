package loan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=loan
type Repository interface {
	CreateLoan(ctx context.Context, l *Loan) error
	GetLoan(ctx context.Context, id uuid.UUID) (*Loan, error)
	UpdateLoan(ctx context.Context, l *Loan) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error

	ListLoans(ctx context.Context, filter ListFilter) ([]*Loan, error)
	DeleteLoan(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	ClientID              uuid.UUID
	Principal             decimal.Decimal
	InterestRate          decimal.Decimal
	Currency              Currency
	Frequency             Frequency
	StartDate             *time.Time
	EndDate               *time.Time
	HasCollateral         bool
	CollateralDescription string
}

type ListFilter struct {
	Status   *Status
	ClientID *uuid.UUID
	Currency *Currency
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Loan, error) {
	if !params.Principal.IsPositive() {
		return nil, ErrInvalidPrincipal
	}

	if params.InterestRate.IsNegative() {
		return nil, ErrInvalidRate
	}

	if !params.Currency.Valid() {
		return nil, ErrInvalidCurrency
	}

	if err := validateSchedule(params.Frequency, params.StartDate, params.EndDate); err != nil {
		return nil, err
	}

	total := TotalPayable(params.Principal, params.InterestRate)

	l := &Loan{
		ClientID:              params.ClientID,
		Principal:             params.Principal,
		InterestRate:          params.InterestRate,
		TotalPayable:          total,
		OutstandingBalance:    total,
		InstallmentAmount:     installmentAmount(total, params.StartDate, params.EndDate, params.Frequency),
		Currency:              params.Currency,
		Frequency:             params.Frequency,
		StartDate:             params.StartDate,
		EndDate:               params.EndDate,
		Status:                StatusActive,
		HasCollateral:         params.HasCollateral,
		CollateralDescription: params.CollateralDescription,
	}
	if err := s.repo.CreateLoan(ctx, l); err != nil {
		return nil, err
	}

	return l, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Loan, error) {
	return s.repo.GetLoan(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Loan, error) {
	return s.repo.ListLoans(ctx, filter)
}

// Update persists schedule and collateral changes. The installment amount is
// recomputed since it depends on the schedule.
func (s *Service) Update(ctx context.Context, l *Loan) error {
	if err := validateSchedule(l.Frequency, l.StartDate, l.EndDate); err != nil {
		return err
	}

	l.InstallmentAmount = installmentAmount(l.TotalPayable, l.StartDate, l.EndDate, l.Frequency)

	return s.repo.UpdateLoan(ctx, l)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	return s.repo.UpdateStatus(ctx, id, status)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteLoan(ctx, id)
}

func validateSchedule(f Frequency, start, end *time.Time) error {
	if !f.Valid() {
		return ErrInvalidFrequency
	}

	if start != nil && end != nil && Day(*end).Before(Day(*start)) {
		return ErrInvalidDates
	}

	return nil
}

func installmentAmount(total decimal.Decimal, start, end *time.Time, f Frequency) decimal.Decimal {
	n := Installments(start, end, f)
	return total.Div(decimal.NewFromInt(int64(n))).Round(2)
}
