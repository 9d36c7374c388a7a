package client

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("client not found")
	ErrInvalidName = errors.New("client name is required")
)

// Client is a borrower registered in the system.
type Client struct {
	ID         uuid.UUID
	Name       string
	DocumentID string // Cédula or RIF
	Phone      string
	Email      string
	Address    string
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
	DeletedAt  *time.Time
}
