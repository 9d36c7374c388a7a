package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/prestamos/internal/loan"
	"github.com/MrJamesThe3rd/prestamos/internal/payment"
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

// scanPayment reads a payment row joined with its client name.
// Expected column order matches selectPaymentColumns.
func scanPayment(s scanner) (*payment.Payment, error) {
	var p payment.Payment

	var currency string

	var clientName, reference, notes sql.NullString

	var rate decimal.NullDecimal

	if err := s.Scan(
		&p.ID, &p.LoanID, &clientName,
		&p.Amount, &currency, &rate, &p.AppliedAmount, &p.PaymentDate,
		&reference, &notes,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	); err != nil {
		return nil, err
	}

	p.ClientName = clientName.String
	p.Currency = loan.Currency(currency)
	p.Reference = reference.String
	p.Notes = notes.String

	if rate.Valid {
		p.ExchangeRateAtPayment = &rate.Decimal
	}

	return &p, nil
}

const selectPaymentColumns = `
	p.id, p.loan_id, c.name as client_name,
	p.amount, p.currency, p.exchange_rate, p.applied_amount, p.payment_date,
	p.reference, p.notes,
	p.created_at, p.updated_at, p.deleted_at
`

const fromPayments = `
	FROM payments p
	JOIN loans l ON p.loan_id = l.id
	LEFT JOIN clients c ON l.client_id = c.id
`

func nullRate(r *decimal.Decimal) decimal.NullDecimal {
	if r == nil {
		return decimal.NullDecimal{}
	}

	return decimal.NullDecimal{Decimal: *r, Valid: true}
}

// lockLoan reads the loan's balance, status and currency under a row lock held
// until tx ends, so concurrent payments to the same loan settle one at a time.
func lockLoan(ctx context.Context, tx *sql.Tx, loanID uuid.UUID) (decimal.Decimal, loan.Status, loan.Currency, error) {
	query := `
		SELECT outstanding_balance, status, currency
		FROM loans
		WHERE id = $1 AND deleted_at IS NULL
		FOR UPDATE
	`

	var balance decimal.Decimal

	var status, currency string

	if err := tx.QueryRowContext(ctx, query, loanID).Scan(&balance, &status, &currency); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, "", "", loan.ErrNotFound
		}

		return decimal.Zero, "", "", fmt.Errorf("locking loan: %w", err)
	}

	return balance, loan.Status(status), loan.Currency(currency), nil
}

// insertAndCredit settles p against the locked loan row, stores it and takes
// its applied amount off the balance. The loan flips to paid once nothing is left.
func insertAndCredit(ctx context.Context, tx *sql.Tx, p *payment.Payment) error {
	balance, status, currency, err := lockLoan(ctx, tx, p.LoanID)
	if err != nil {
		return err
	}

	if err := p.Settle(currency, status, balance); err != nil {
		return err
	}

	insert := `
		INSERT INTO payments (
			loan_id, amount, currency, exchange_rate, applied_amount, payment_date, reference, notes,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRowContext(ctx, insert,
		p.LoanID,
		p.Amount,
		p.Currency,
		nullRate(p.ExchangeRateAtPayment),
		p.AppliedAmount,
		p.PaymentDate,
		p.Reference,
		p.Notes,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating payment: %w", err)
	}

	credit := `
		UPDATE loans
		SET outstanding_balance = outstanding_balance - $1,
			status = CASE WHEN outstanding_balance - $1 <= 0 THEN 'paid' ELSE status END,
			updated_at = NOW()
		WHERE id = $2
	`

	if _, err := tx.ExecContext(ctx, credit, p.AppliedAmount, p.LoanID); err != nil {
		return fmt.Errorf("crediting loan: %w", err)
	}

	return nil
}

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := insertAndCredit(ctx, dbTx, p); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	query := `SELECT ` + selectPaymentColumns + fromPayments + `
		WHERE p.id = $1 AND p.deleted_at IS NULL`

	p, err := scanPayment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrNotFound
		}

		return nil, fmt.Errorf("getting payment: %w", err)
	}

	return p, nil
}

func (s *Store) ListPayments(ctx context.Context, filter payment.ListFilter) ([]*payment.Payment, error) {
	query := `SELECT ` + selectPaymentColumns + fromPayments + `
		WHERE p.deleted_at IS NULL`

	var args []any

	argIdx := 1

	if filter.LoanID != nil {
		query += fmt.Sprintf(" AND p.loan_id = $%d", argIdx)

		args = append(args, *filter.LoanID)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND p.payment_date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND p.payment_date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY p.payment_date ASC, p.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []*payment.Payment

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating payment rows: %w", err)
	}

	return payments, nil
}

// DeletePayment soft-deletes the payment and restores the amount it credited.
// A loan closed by this payment goes back to active.
func (s *Store) DeletePayment(ctx context.Context, id uuid.UUID) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	remove := `
		UPDATE payments
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING loan_id, applied_amount
	`

	var loanID uuid.UUID

	var applied decimal.Decimal

	if err := dbTx.QueryRowContext(ctx, remove, id).Scan(&loanID, &applied); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return payment.ErrNotFound
		}

		return fmt.Errorf("deleting payment: %w", err)
	}

	restore := `
		UPDATE loans
		SET outstanding_balance = LEAST(outstanding_balance + $1, total_payable),
			status = CASE WHEN status = 'paid' THEN 'active' ELSE status END,
			updated_at = NOW()
		WHERE id = $2
	`

	if _, err := dbTx.ExecContext(ctx, restore, applied, loanID); err != nil {
		return fmt.Errorf("restoring loan balance: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func importLockKey(minDate, maxDate time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte("payments"))
	h.Write([]byte{0})
	h.Write([]byte(minDate.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(maxDate.Format(time.DateOnly)))

	return int64(h.Sum64())
}

type importTx struct {
	tx *sql.Tx
}

// BeginImport opens a transaction holding an advisory lock on the date range so
// two imports of the same file cannot interleave. Each payment also locks its
// loan row when it is written, which orders it against Register.
func (s *Store) BeginImport(ctx context.Context, minDate, maxDate time.Time) (payment.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey(minDate, maxDate)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

// FindDuplicates returns stored payments in the batch's date range that match
// an incoming row on loan, date, amount, currency and reference.
func (itx *importTx) FindDuplicates(ctx context.Context, params []payment.CreateParams) ([]*payment.Payment, error) {
	if len(params) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		LoanID    uuid.UUID
		Date      string
		Amount    string
		Currency  loan.Currency
		Reference string
	}

	minDate := params[0].PaymentDate
	maxDate := params[0].PaymentDate
	keySet := make(map[lookupKey]struct{}, len(params))

	for _, p := range params {
		if p.PaymentDate.Before(minDate) {
			minDate = p.PaymentDate
		}

		if p.PaymentDate.After(maxDate) {
			maxDate = p.PaymentDate
		}

		keySet[lookupKey{
			LoanID:    p.LoanID,
			Date:      p.PaymentDate.Format(time.DateOnly),
			Amount:    p.Amount.StringFixed(2),
			Currency:  p.Currency,
			Reference: p.Reference,
		}] = struct{}{}
	}

	query := `SELECT ` + selectPaymentColumns + fromPayments + `
		WHERE p.deleted_at IS NULL AND p.payment_date >= $1 AND p.payment_date <= $2
		ORDER BY p.payment_date ASC`

	rows, err := itx.tx.QueryContext(ctx, query, loan.Day(minDate), loan.Day(maxDate))
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*payment.Payment

	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}

		k := lookupKey{
			LoanID:    p.LoanID,
			Date:      p.PaymentDate.Format(time.DateOnly),
			Amount:    p.Amount.StringFixed(2),
			Currency:  p.Currency,
			Reference: p.Reference,
		}

		if _, found := keySet[k]; !found {
			continue
		}

		duplicates = append(duplicates, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *importTx) CreatePayments(ctx context.Context, payments []*payment.Payment) error {
	for _, p := range payments {
		if err := insertAndCredit(ctx, itx.tx, p); err != nil {
			return err
		}
	}

	return nil
}
