package client

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=client
type Repository interface {
	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, id uuid.UUID) (*Client, error)
	ListClients(ctx context.Context, filter ListFilter) ([]*Client, error)
	UpdateClient(ctx context.Context, c *Client) error
	DeleteClient(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name       string
	DocumentID string
	Phone      string
	Email      string
	Address    string
	Notes      string
}

type ListFilter struct {
	// Search matches name or document id, case-insensitive.
	Search string
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Client, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	c := &Client{
		Name:       name,
		DocumentID: strings.TrimSpace(params.DocumentID),
		Phone:      strings.TrimSpace(params.Phone),
		Email:      strings.TrimSpace(params.Email),
		Address:    params.Address,
		Notes:      params.Notes,
	}
	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Client, error) {
	return s.repo.GetClient(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Client, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	return s.repo.ListClients(ctx, filter)
}

func (s *Service) Update(ctx context.Context, c *Client) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return ErrInvalidName
	}

	return s.repo.UpdateClient(ctx, c)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteClient(ctx, id)
}
