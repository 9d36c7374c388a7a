package loan

import "errors"

var (
	ErrNotFound         = errors.New("loan not found")
	ErrInvalidPrincipal = errors.New("principal must be greater than zero")
	ErrInvalidRate      = errors.New("interest rate must not be negative")
	ErrInvalidCurrency  = errors.New("unknown currency")
	ErrInvalidFrequency = errors.New("unknown payment frequency")
	ErrInvalidStatus    = errors.New("unknown loan status")
	ErrInvalidDates     = errors.New("end date is before start date")
)
