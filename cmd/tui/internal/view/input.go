package view

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var errNotPositive = errors.New("must be greater than zero")

// ParseAmount reads a user typed amount. A single comma is taken as the
// decimal separator, so "36,5" and "36.5" are the same.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.New("not a number")
	}

	if !d.IsPositive() {
		return decimal.Zero, errNotPositive
	}

	return d, nil
}

// ParseOptionalAmount is ParseAmount, but blank input gives nil.
func ParseOptionalAmount(s string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	d, err := ParseAmount(s)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

func validateAmount(s string) error {
	_, err := ParseAmount(s)
	return err
}

func validateOptionalAmount(s string) error {
	_, err := ParseOptionalAmount(s)
	return err
}

func validateDate(s string) error {
	_, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return errors.New("expected YYYY-MM-DD")
	}

	return nil
}
