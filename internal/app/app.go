// Package app wires stores, caches and services from configuration. Both the
// API server and the terminal dashboard start from here.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/prestamos/internal/analytics"
	"github.com/MrJamesThe3rd/prestamos/internal/client"
	clientStore "github.com/MrJamesThe3rd/prestamos/internal/client/store"
	"github.com/MrJamesThe3rd/prestamos/internal/collections"
	"github.com/MrJamesThe3rd/prestamos/internal/config"
	"github.com/MrJamesThe3rd/prestamos/internal/database"
	"github.com/MrJamesThe3rd/prestamos/internal/importer"
	"github.com/MrJamesThe3rd/prestamos/internal/loan"
	loanStore "github.com/MrJamesThe3rd/prestamos/internal/loan/store"
	"github.com/MrJamesThe3rd/prestamos/internal/payment"
	paymentStore "github.com/MrJamesThe3rd/prestamos/internal/payment/store"
	"github.com/MrJamesThe3rd/prestamos/internal/rates"
	rateStore "github.com/MrJamesThe3rd/prestamos/internal/rates/store"
	"github.com/MrJamesThe3rd/prestamos/internal/report"
)

type Services struct {
	Clock       collections.Clock
	Clients     *client.Service
	Loans       *loan.Service
	Payments    *payment.Service
	Rates       *rates.Service
	Collections *collections.Service
	Analytics   *analytics.Service
	Importer    *importer.Service
	Reports     *report.Service

	closers []func() error
}

// New connects to the database, applies the schema and builds every service.
// Call Close when done.
func New(ctx context.Context, cfg *config.Config) (*Services, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	db, err := database.New(cfg.ConnectionString(), database.PoolOptions{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Services{closers: []func() error{db.Close}}

	if err := database.Migrate(ctx, db); err != nil {
		s.Close()
		return nil, err
	}

	cache, err := newRateCache(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, err
	}

	if c, ok := cache.(*rates.RedisCache); ok {
		s.closers = append(s.closers, c.Close)
	}

	s.wire(db, cache, collections.SystemClock{Location: loc})

	return s, nil
}

func (s *Services) wire(db *sql.DB, cache rates.Cache, clock collections.Clock) {
	s.Clock = clock
	s.Clients = client.NewService(clientStore.New(db))
	s.Loans = loan.NewService(loanStore.New(db))
	s.Payments = payment.NewService(paymentStore.New(db), s.Loans)
	s.Rates = rates.NewService(rateStore.New(db), cache)
	s.Collections = collections.NewService(s.Loans, clock)
	s.Analytics = analytics.NewService(s.Loans, s.Payments, s.Clients, s.Rates, clock)
	s.Importer = importer.NewService()
	s.Reports = report.NewService(s.Collections)
}

// newRateCache uses Redis when configured and an in-process cache otherwise.
func newRateCache(ctx context.Context, cfg *config.Config) (rates.Cache, error) {
	if cfg.Redis.URL == "" {
		slog.Info("redis not configured, caching rates in memory")
		return rates.NewMemoryCache(cfg.Redis.RateTTL), nil
	}

	c, err := rates.NewRedisCache(ctx, cfg.Redis.URL, cfg.Redis.RateTTL)
	if err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return c, nil
}

// Close releases connections in reverse order of acquisition.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			slog.Warn("failed to close resource", "error", err)
		}
	}
}
