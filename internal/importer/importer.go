package importer

import (
	"io"

	"github.com/MrJamesThe3rd/prestamos/internal/payment"
)

// Format names a payment file layout.
type Format string

const (
	FormatCSV Format = "csv"
)

type Importer interface {
	Parse(r io.Reader) ([]payment.CreateParams, error)
}
