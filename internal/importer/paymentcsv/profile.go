package paymentcsv

import "github.com/MrJamesThe3rd/prestamos/internal/loan"

// amountMode determines how amount and currency are read from a row.
type amountMode int

const (
	// amountSingle means one amount column plus a currency column ("Monto" + "Moneda").
	amountSingle amountMode = iota
	// amountSplit means one amount column per currency ("Monto USD" / "Monto Bs").
	amountSplit
)

// Profile describes the column layout of a payment spreadsheet.
type Profile struct {
	Name        string
	DateCol     string
	LoanCol     string
	AmountMode  amountMode
	AmountCol   string // amountSingle
	CurrencyCol string // amountSingle
	USDCol      string // amountSplit
	VESCol      string // amountSplit

	// Optional columns.
	RateCol      string
	ReferenceCol string
	NotesCol     string
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.LoanCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol, p.CurrencyCol)
	case amountSplit:
		cols = append(cols, p.USDCol, p.VESCol)
	}

	return cols
}

// profiles is tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:         "por moneda",
		DateCol:      "Fecha",
		LoanCol:      "Préstamo",
		AmountMode:   amountSplit,
		USDCol:       "Monto USD",
		VESCol:       "Monto Bs",
		RateCol:      "Tasa",
		ReferenceCol: "Referencia",
		NotesCol:     "Notas",
	},
	{
		Name:         "registro",
		DateCol:      "Fecha",
		LoanCol:      "Préstamo",
		AmountMode:   amountSingle,
		AmountCol:    "Monto",
		CurrencyCol:  "Moneda",
		RateCol:      "Tasa",
		ReferenceCol: "Referencia",
		NotesCol:     "Notas",
	},
}

// currencyAliases maps how people write currencies in spreadsheets.
var currencyAliases = map[string]loan.Currency{
	"USD":       loan.CurrencyUSD,
	"US$":       loan.CurrencyUSD,
	"$":         loan.CurrencyUSD,
	"DOLARES":   loan.CurrencyUSD,
	"DÓLARES":   loan.CurrencyUSD,
	"VES":       loan.CurrencyVES,
	"BS":        loan.CurrencyVES,
	"BS.":       loan.CurrencyVES,
	"BS.S":      loan.CurrencyVES,
	"BOLIVARES": loan.CurrencyVES,
	"BOLÍVARES": loan.CurrencyVES,
}
