package payment

import "errors"

var (
	ErrNotFound        = errors.New("payment not found")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrInvalidCurrency = errors.New("unknown currency")
	ErrMissingDate     = errors.New("payment date is required")
	ErrMissingRate     = errors.New("exchange rate is required when paying in another currency")
	ErrLoanClosed      = errors.New("loan is not accepting payments")
)
