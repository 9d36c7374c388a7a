package paymentcsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/prestamos/internal/encoding"
	"github.com/MrJamesThe3rd/prestamos/internal/loan"
	"github.com/MrJamesThe3rd/prestamos/internal/payment"
)

var ErrNoHeader = errors.New("no payment header found: expected Fecha, Préstamo and Monto/Moneda or Monto USD/Monto Bs columns")

// RowError reports a data row that could not be read. Row is 1-based.
type RowError struct {
	Row int
	Err error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

var dateLayouts = []string{"02/01/2006", "02-01-2006", "2006-01-02", "2/1/2006"}

// Parser reads payment spreadsheets saved as semicolon separated CSV, in any
// common text encoding. Leading rows before the header are ignored.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]payment.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, ErrNoHeader
	}

	return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

func (c colIndex) lookup(name string) int {
	if name == "" {
		return -1
	}

	if i, ok := c[strings.ToLower(name)]; ok {
		return i
	}

	return -1
}

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if cols.lookup(name) < 0 {
			return false
		}
	}

	return true
}

// parseRows reads data rows. Rows without a date are skipped as blank or
// footer lines; any other unreadable cell fails the whole file.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]payment.CreateParams, error) {
	var params []payment.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		dateStr := cellValue(row, cols.lookup(p.DateCol))
		if dateStr == "" {
			continue
		}

		date, err := parseDate(dateStr)
		if err != nil {
			return nil, &RowError{Row: rowNum, Err: err}
		}

		loanStr := cellValue(row, cols.lookup(p.LoanCol))

		loanID, err := uuid.Parse(loanStr)
		if err != nil {
			return nil, &RowError{Row: rowNum, Err: fmt.Errorf("invalid loan id %q", loanStr)}
		}

		amount, currency, err := readAmount(p, cols, row)
		if err != nil {
			return nil, &RowError{Row: rowNum, Err: err}
		}

		var rate *decimal.Decimal

		if s := cellValue(row, cols.lookup(p.RateCol)); s != "" {
			d, err := parseAmount(s)
			if err != nil {
				return nil, &RowError{Row: rowNum, Err: fmt.Errorf("invalid exchange rate %q", s)}
			}

			rate = &d
		}

		params = append(params, payment.CreateParams{
			LoanID:       loanID,
			Amount:       amount,
			Currency:     currency,
			ExchangeRate: rate,
			PaymentDate:  date,
			Reference:    cellValue(row, cols.lookup(p.ReferenceCol)),
			Notes:        cellValue(row, cols.lookup(p.NotesCol)),
		})
	}

	return params, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func readAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, loan.Currency, error) {
	switch p.AmountMode {
	case amountSingle:
		return readSingleAmount(row, cols.lookup(p.AmountCol), cols.lookup(p.CurrencyCol))
	case amountSplit:
		return readSplitAmount(row, cols.lookup(p.USDCol), cols.lookup(p.VESCol))
	}

	return decimal.Zero, "", errors.New("unsupported amount layout")
}

func readSingleAmount(row []string, amountIdx, currencyIdx int) (decimal.Decimal, loan.Currency, error) {
	s := cellValue(row, amountIdx)
	if s == "" {
		return decimal.Zero, "", errors.New("missing amount")
	}

	amount, err := parseAmount(s)
	if err != nil {
		return decimal.Zero, "", fmt.Errorf("invalid amount %q", s)
	}

	cur := cellValue(row, currencyIdx)

	currency, ok := currencyAliases[strings.ToUpper(cur)]
	if !ok {
		return decimal.Zero, "", fmt.Errorf("unknown currency %q", cur)
	}

	return amount, currency, nil
}

// readSplitAmount takes the first non-zero of the USD and Bs columns.
func readSplitAmount(row []string, usdIdx, vesIdx int) (decimal.Decimal, loan.Currency, error) {
	for _, c := range []struct {
		idx      int
		currency loan.Currency
	}{
		{usdIdx, loan.CurrencyUSD},
		{vesIdx, loan.CurrencyVES},
	} {
		s := cellValue(row, c.idx)
		if s == "" {
			continue
		}

		amount, err := parseAmount(s)
		if err != nil {
			return decimal.Zero, "", fmt.Errorf("invalid amount %q", s)
		}

		if !amount.IsZero() {
			return amount, c.currency, nil
		}
	}

	return decimal.Zero, "", errors.New("missing amount")
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
