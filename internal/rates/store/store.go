package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/prestamos/internal/rates"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRate(s scanner) (*rates.ExchangeRate, error) {
	var r rates.ExchangeRate

	var source sql.NullString

	if err := s.Scan(&r.ID, &r.Rate, &source, &r.EffectiveAt, &r.CreatedAt); err != nil {
		return nil, err
	}

	r.Source = source.String

	return &r, nil
}

const selectRateColumns = `id, rate, source, effective_at, created_at`

func (s *Store) CreateRate(ctx context.Context, r *rates.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (rate, source, effective_at, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, r.Rate, r.Source, r.EffectiveAt).Scan(&r.ID, &r.CreatedAt); err != nil {
		return fmt.Errorf("creating exchange rate: %w", err)
	}

	return nil
}

func (s *Store) LatestRate(ctx context.Context) (*rates.ExchangeRate, error) {
	query := `SELECT ` + selectRateColumns + `
		FROM exchange_rates
		ORDER BY effective_at DESC, created_at DESC
		LIMIT 1`

	r, err := scanRate(s.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rates.ErrNotFound
		}

		return nil, fmt.Errorf("getting latest exchange rate: %w", err)
	}

	return r, nil
}

func (s *Store) ListRates(ctx context.Context, limit int) ([]*rates.ExchangeRate, error) {
	query := `SELECT ` + selectRateColumns + `
		FROM exchange_rates
		ORDER BY effective_at DESC, created_at DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing exchange rates: %w", err)
	}
	defer rows.Close()

	var out []*rates.ExchangeRate

	for rows.Next() {
		r, err := scanRate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning exchange rate: %w", err)
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating exchange rate rows: %w", err)
	}

	return out, nil
}
