package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/prestamos/internal/client"
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

func scanClient(s scanner) (*client.Client, error) {
	var c client.Client

	var doc, phone, email, address, notes sql.NullString

	if err := s.Scan(
		&c.ID, &c.Name, &doc, &phone, &email, &address, &notes,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	); err != nil {
		return nil, err
	}

	c.DocumentID = doc.String
	c.Phone = phone.String
	c.Email = email.String
	c.Address = address.String
	c.Notes = notes.String

	return &c, nil
}

const selectClientColumns = `
	id, name, document_id, phone, email, address, notes, created_at, updated_at, deleted_at
`

func (s *Store) CreateClient(ctx context.Context, c *client.Client) error {
	query := `
		INSERT INTO clients (name, document_id, phone, email, address, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		c.Name, c.DocumentID, c.Phone, c.Email, c.Address, c.Notes,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating client: %w", err)
	}

	return nil
}

func (s *Store) GetClient(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	query := `SELECT ` + selectClientColumns + `
		FROM clients
		WHERE id = $1 AND deleted_at IS NULL`

	c, err := scanClient(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, client.ErrNotFound
		}

		return nil, fmt.Errorf("getting client: %w", err)
	}

	return c, nil
}

func (s *Store) ListClients(ctx context.Context, filter client.ListFilter) ([]*client.Client, error) {
	query := `SELECT ` + selectClientColumns + `
		FROM clients
		WHERE deleted_at IS NULL`

	var args []any

	if filter.Search != "" {
		query += ` AND (name ILIKE '%' || $1 || '%' OR document_id ILIKE '%' || $1 || '%')`

		args = append(args, filter.Search)
	}

	query += " ORDER BY name ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var clients []*client.Client

	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}

		clients = append(clients, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating client rows: %w", err)
	}

	return clients, nil
}

func (s *Store) UpdateClient(ctx context.Context, c *client.Client) error {
	query := `
		UPDATE clients
		SET name = $1, document_id = $2, phone = $3, email = $4, address = $5, notes = $6, updated_at = NOW()
		WHERE id = $7 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query,
		c.Name, c.DocumentID, c.Phone, c.Email, c.Address, c.Notes, c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating client: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return client.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteClient(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE clients
		SET deleted_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return client.ErrNotFound
	}

	return nil
}
