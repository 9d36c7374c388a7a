package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/prestamos/internal/loan"
)

// Payment is money received against a loan.
type Payment struct {
	ID         uuid.UUID
	LoanID     uuid.UUID
	ClientName string // Loaded via JOIN
	Amount     decimal.Decimal
	Currency   loan.Currency
	// ExchangeRateAtPayment is VES per USD. Set when the payment currency differs
	// from the loan currency.
	ExchangeRateAtPayment *decimal.Decimal
	// AppliedAmount is what was credited to the loan, in the loan currency.
	AppliedAmount decimal.Decimal
	PaymentDate   time.Time
	Reference     string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	DeletedAt     *time.Time
}

// Settle sets AppliedAmount to the payment converted into the loan currency,
// capped at balance. It must run against the loan's current figures; closed
// loans and loans with nothing outstanding take no payment.
func (p *Payment) Settle(cur loan.Currency, status loan.Status, balance decimal.Decimal) error {
	if status == loan.StatusPaid || status == loan.StatusUncollectible || !balance.IsPositive() {
		return ErrLoanClosed
	}

	credit, err := Convert(p.Amount, p.Currency, cur, p.ExchangeRateAtPayment)
	if err != nil {
		return err
	}

	p.AppliedAmount = decimal.Min(credit, balance)

	return nil
}

// Convert expresses amount, given in currency from, in currency to.
// rate is VES per USD and is only consulted when the currencies differ.
func Convert(amount decimal.Decimal, from, to loan.Currency, rate *decimal.Decimal) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	if rate == nil || !rate.IsPositive() {
		return decimal.Zero, ErrMissingRate
	}

	switch {
	case from == loan.CurrencyUSD && to == loan.CurrencyVES:
		return amount.Mul(*rate).Round(2), nil
	case from == loan.CurrencyVES && to == loan.CurrencyUSD:
		return amount.Div(*rate).Round(2), nil
	}

	return decimal.Zero, ErrInvalidCurrency
}
