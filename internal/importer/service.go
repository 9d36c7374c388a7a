package importer

import (
	"errors"
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/prestamos/internal/importer/paymentcsv"
	"github.com/MrJamesThe3rd/prestamos/internal/payment"
)

var ErrUnknownFormat = errors.New("unknown import format")

type Service struct {
	importers map[Format]Importer
}

func NewService() *Service {
	return &Service{
		importers: map[Format]Importer{
			FormatCSV: paymentcsv.NewParser(),
		},
	}
}

// Import parses r with the importer registered for format. An empty format
// means CSV.
func (s *Service) Import(format Format, r io.Reader) ([]payment.CreateParams, error) {
	if format == "" {
		format = FormatCSV
	}

	imp, ok := s.importers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	return imp.Parse(r)
}
