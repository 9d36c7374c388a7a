package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/prestamos/internal/loan"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=payment
type Repository interface {
	// CreatePayment stores p and credits p.AppliedAmount to its loan atomically.
	CreatePayment(ctx context.Context, p *Payment) error
	GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListPayments(ctx context.Context, filter ListFilter) ([]*Payment, error)
	// DeletePayment removes the payment and gives its applied amount back to the loan.
	DeletePayment(ctx context.Context, id uuid.UUID) error

	BeginImport(ctx context.Context, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, params []CreateParams) ([]*Payment, error)
	CreatePayments(ctx context.Context, payments []*Payment) error
	Commit() error
	Rollback() error
}

// LoanGetter is satisfied by *loan.Service.
type LoanGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*loan.Loan, error)
}

type Service struct {
	repo  Repository
	loans LoanGetter
}

func NewService(repo Repository, loans LoanGetter) *Service {
	return &Service{repo: repo, loans: loans}
}

type CreateParams struct {
	LoanID       uuid.UUID
	Amount       decimal.Decimal
	Currency     loan.Currency
	ExchangeRate *decimal.Decimal
	PaymentDate  time.Time
	Reference    string
	Notes        string
}

type ListFilter struct {
	LoanID    *uuid.UUID
	StartDate *time.Time
	EndDate   *time.Time
}

// Register records a payment against an open loan. The amount is converted to
// the loan currency and the credit never exceeds the outstanding balance. The
// store settles the payment again against the locked loan row, so the figures
// read here only serve to reject bad input early.
func (s *Service) Register(ctx context.Context, params CreateParams) (*Payment, error) {
	if err := validate(params); err != nil {
		return nil, err
	}

	l, err := s.loans.Get(ctx, params.LoanID)
	if err != nil {
		return nil, fmt.Errorf("getting loan: %w", err)
	}

	p, err := apply(params, l.Currency, l.Status, l.OutstandingBalance)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, err
	}

	p.ClientName = l.ClientName

	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.repo.GetPayment(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Payment, error) {
	return s.repo.ListPayments(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeletePayment(ctx, id)
}

type ImportResult struct {
	Imported   []*Payment
	Duplicates []CreateParams
}

// RegisterBatch records many payments in a single transaction. Rows already
// stored, or repeated within the batch (same loan, date, amount, currency and
// reference), are skipped and reported back. Payments to the same loan are capped against the balance left
// by the rows before them.
func (s *Service) RegisterBatch(ctx context.Context, params []CreateParams) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	for i, p := range params {
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("payment %d: %w", i+1, err)
		}
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	existing, err := itx.FindDuplicates(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	seen := make(map[dupKey]struct{}, len(existing))
	for _, e := range existing {
		seen[keyOf(e.LoanID, e.PaymentDate, e.Amount, e.Currency, e.Reference)] = struct{}{}
	}

	type running struct {
		loan    *loan.Loan
		balance decimal.Decimal
		status  loan.Status
	}

	loans := make(map[uuid.UUID]*running)
	result := &ImportResult{}

	for i, p := range params {
		if _, dup := seen[keyOf(p.LoanID, p.PaymentDate, p.Amount, p.Currency, p.Reference)]; dup {
			result.Duplicates = append(result.Duplicates, p)
			continue
		}

		r, ok := loans[p.LoanID]
		if !ok {
			l, err := s.loans.Get(ctx, p.LoanID)
			if err != nil {
				return nil, fmt.Errorf("payment %d: getting loan: %w", i+1, err)
			}

			r = &running{loan: l, balance: l.OutstandingBalance, status: l.Status}
			loans[p.LoanID] = r
		}

		pay, err := apply(p, r.loan.Currency, r.status, r.balance)
		if err != nil {
			return nil, fmt.Errorf("payment %d: %w", i+1, err)
		}

		pay.ClientName = r.loan.ClientName

		r.balance = r.balance.Sub(pay.AppliedAmount)
		if !r.balance.IsPositive() {
			r.status = loan.StatusPaid
		}

		seen[keyOf(p.LoanID, p.PaymentDate, p.Amount, p.Currency, p.Reference)] = struct{}{}
		result.Imported = append(result.Imported, pay)
	}

	if len(result.Imported) > 0 {
		if err := itx.CreatePayments(ctx, result.Imported); err != nil {
			return nil, fmt.Errorf("create payments: %w", err)
		}
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return result, nil
}

func validate(p CreateParams) error {
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if !p.Currency.Valid() {
		return ErrInvalidCurrency
	}

	if p.PaymentDate.IsZero() {
		return ErrMissingDate
	}

	return nil
}

func apply(p CreateParams, cur loan.Currency, status loan.Status, balance decimal.Decimal) (*Payment, error) {
	pay := &Payment{
		LoanID:                p.LoanID,
		Amount:                p.Amount,
		Currency:              p.Currency,
		ExchangeRateAtPayment: p.ExchangeRate,
		PaymentDate:           loan.Day(p.PaymentDate),
		Reference:             p.Reference,
		Notes:                 p.Notes,
	}

	if err := pay.Settle(cur, status, balance); err != nil {
		return nil, err
	}

	return pay, nil
}

type dupKey struct {
	LoanID    uuid.UUID
	Date      string
	Amount    string
	Currency  loan.Currency
	Reference string
}

func keyOf(loanID uuid.UUID, date time.Time, amount decimal.Decimal, cur loan.Currency, ref string) dupKey {
	return dupKey{
		LoanID:    loanID,
		Date:      date.Format(time.DateOnly),
		Amount:    amount.StringFixed(2),
		Currency:  cur,
		Reference: ref,
	}
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].PaymentDate
	maxDate := params[0].PaymentDate

	for _, p := range params[1:] {
		if p.PaymentDate.Before(minDate) {
			minDate = p.PaymentDate
		}

		if p.PaymentDate.After(maxDate) {
			maxDate = p.PaymentDate
		}
	}

	return loan.Day(minDate), loan.Day(maxDate)
}
