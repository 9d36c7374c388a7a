package view

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/prestamos/internal/loan"
)

const dbTimeout = 5 * time.Second

// FormatMoney renders an amount with two decimals and its currency symbol.
func FormatMoney(d decimal.Decimal, cur loan.Currency) string {
	if cur == loan.CurrencyVES {
		return "Bs " + d.StringFixed(2)
	}

	return "$" + d.StringFixed(2)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return "-"
	}

	return FormatDate(*t)
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
