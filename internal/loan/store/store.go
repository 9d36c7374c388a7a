package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/prestamos/internal/loan"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanLoan reads a loan row joined with its client name.
// Expected column order matches selectLoanColumns.
func scanLoan(s scanner) (*loan.Loan, error) {
	var l loan.Loan

	var currency, frequency, status string

	var clientName, collateral sql.NullString

	if err := s.Scan(
		&l.ID, &l.ClientID, &clientName,
		&l.Principal, &l.InterestRate, &l.TotalPayable, &l.OutstandingBalance, &l.InstallmentAmount,
		&currency, &frequency, &l.StartDate, &l.EndDate, &status,
		&l.HasCollateral, &collateral,
		&l.CreatedAt, &l.UpdatedAt, &l.DeletedAt,
	); err != nil {
		return nil, err
	}

	l.ClientName = clientName.String
	l.Currency = loan.Currency(currency)
	l.Frequency = loan.Frequency(frequency)
	l.Status = loan.Status(status)
	l.CollateralDescription = collateral.String

	return &l, nil
}

const selectLoanColumns = `
	l.id, l.client_id, c.name as client_name,
	l.principal, l.interest_rate, l.total_payable, l.outstanding_balance, l.installment_amount,
	l.currency, l.frequency, l.start_date, l.end_date, l.status,
	l.has_collateral, l.collateral_description,
	l.created_at, l.updated_at, l.deleted_at
`

func (s *Store) CreateLoan(ctx context.Context, l *loan.Loan) error {
	query := `
		INSERT INTO loans (
			client_id, principal, interest_rate, total_payable, outstanding_balance, installment_amount,
			currency, frequency, start_date, end_date, status, has_collateral, collateral_description,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		l.ClientID,
		l.Principal,
		l.InterestRate,
		l.TotalPayable,
		l.OutstandingBalance,
		l.InstallmentAmount,
		l.Currency,
		l.Frequency,
		l.StartDate,
		l.EndDate,
		l.Status,
		l.HasCollateral,
		l.CollateralDescription,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating loan: %w", err)
	}

	return nil
}

func (s *Store) GetLoan(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	query := `SELECT ` + selectLoanColumns + `
		FROM loans l
		LEFT JOIN clients c ON l.client_id = c.id
		WHERE l.id = $1 AND l.deleted_at IS NULL`

	l, err := scanLoan(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, loan.ErrNotFound
		}

		return nil, fmt.Errorf("getting loan: %w", err)
	}

	return l, nil
}

func (s *Store) ListLoans(ctx context.Context, filter loan.ListFilter) ([]*loan.Loan, error) {
	query := `SELECT ` + selectLoanColumns + `
		FROM loans l
		LEFT JOIN clients c ON l.client_id = c.id
		WHERE l.deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND l.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.ClientID != nil {
		query += fmt.Sprintf(" AND l.client_id = $%d", argIdx)

		args = append(args, *filter.ClientID)
		argIdx++
	}

	if filter.Currency != nil {
		query += fmt.Sprintf(" AND l.currency = $%d", argIdx)

		args = append(args, *filter.Currency)
		argIdx++
	}

	query += " ORDER BY l.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing loans: %w", err)
	}
	defer rows.Close()

	var loans []*loan.Loan

	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning loan: %w", err)
		}

		loans = append(loans, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating loan rows: %w", err)
	}

	return loans, nil
}

func (s *Store) UpdateLoan(ctx context.Context, l *loan.Loan) error {
	query := `
		UPDATE loans
		SET frequency = $1, start_date = $2, end_date = $3, installment_amount = $4,
			has_collateral = $5, collateral_description = $6, updated_at = NOW()
		WHERE id = $7 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query,
		l.Frequency,
		l.StartDate,
		l.EndDate,
		l.InstallmentAmount,
		l.HasCollateral,
		l.CollateralDescription,
		l.ID,
	)
	if err != nil {
		return fmt.Errorf("updating loan: %w", err)
	}

	return requireRow(res)
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status loan.Status) error {
	query := `
		UPDATE loans
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	return requireRow(res)
}

func (s *Store) DeleteLoan(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE loans
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting loan: %w", err)
	}

	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if n == 0 {
		return loan.ErrNotFound
	}

	return nil
}
