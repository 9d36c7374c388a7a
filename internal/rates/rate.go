package rates

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound    = errors.New("no exchange rate recorded")
	ErrInvalidRate = errors.New("exchange rate must be greater than zero")
)

// ExchangeRate is the number of bolívares one dollar buys from EffectiveAt on.
type ExchangeRate struct {
	ID          uuid.UUID       `json:"id"`
	Rate        decimal.Decimal `json:"rate"`
	Source      string          `json:"source"`
	EffectiveAt time.Time       `json:"effective_at"`
	CreatedAt   time.Time       `json:"created_at"`
}
