package paymentcsv

import (
	"strings"

	"github.com/shopspring/decimal"
)

// parseAmount parses a decimal-comma amount: "1.234,56" -> 1234.56, "36,5" -> 36.5.
// Dots are always thousands separators. Currency symbols and spaces are ignored.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.NewReplacer(" ", "", "\u00a0", "", "$", "", "Bs.", "", "Bs", "").Replace(s)
	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	return decimal.NewFromString(clean)
}
