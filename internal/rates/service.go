package rates

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

const defaultHistoryLimit = 30

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=rates
type Repository interface {
	CreateRate(ctx context.Context, r *ExchangeRate) error
	LatestRate(ctx context.Context) (*ExchangeRate, error)
	ListRates(ctx context.Context, limit int) ([]*ExchangeRate, error)
}

// Cache holds the current rate. Get returns nil without error on a miss.
type Cache interface {
	Get(ctx context.Context) (*ExchangeRate, error)
	Set(ctx context.Context, r *ExchangeRate) error
}

type Service struct {
	repo  Repository
	cache Cache
}

func NewService(repo Repository, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

type RecordParams struct {
	Rate        decimal.Decimal
	Source      string
	EffectiveAt time.Time
}

// Record stores a new rate and refreshes the cached current rate. A rate with
// an older EffectiveAt is kept in history but does not replace the current one.
func (s *Service) Record(ctx context.Context, params RecordParams) (*ExchangeRate, error) {
	if !params.Rate.IsPositive() {
		return nil, ErrInvalidRate
	}

	effective := params.EffectiveAt
	if effective.IsZero() {
		effective = time.Now()
	}

	r := &ExchangeRate{
		Rate:        params.Rate,
		Source:      params.Source,
		EffectiveAt: effective,
	}
	if err := s.repo.CreateRate(ctx, r); err != nil {
		return nil, err
	}

	latest, err := s.repo.LatestRate(ctx)
	if err != nil {
		slog.Warn("failed to reload current rate", "error", err)
		return r, nil
	}

	s.store(ctx, latest)

	return r, nil
}

// Current returns the most recent rate, from the cache when possible.
func (s *Service) Current(ctx context.Context) (*ExchangeRate, error) {
	cached, err := s.cache.Get(ctx)
	if err != nil {
		slog.Warn("failed to read cached rate", "error", err)
	}

	if cached != nil {
		return cached, nil
	}

	r, err := s.repo.LatestRate(ctx)
	if err != nil {
		return nil, err
	}

	s.store(ctx, r)

	return r, nil
}

// CurrentRate is the bare VES-per-USD value of the current rate.
func (s *Service) CurrentRate(ctx context.Context) (decimal.Decimal, error) {
	r, err := s.Current(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return r.Rate, nil
}

// History lists recorded rates, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]*ExchangeRate, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	return s.repo.ListRates(ctx, limit)
}

func (s *Service) store(ctx context.Context, r *ExchangeRate) {
	if err := s.cache.Set(ctx, r); err != nil {
		slog.Warn("failed to cache current rate", "rate", r.Rate.String(), "error", err)
	}
}
