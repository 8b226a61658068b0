package domain

import (
	"context"
	"errors"
)

type CreateClientRequest struct {
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
	City  string `json:"city"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Service interface {
	Create(ctx context.Context, req CreateClientRequest) (*Client, error)
	List(ctx context.Context) ([]Client, error)
	GetByID(ctx context.Context, id string) (*Client, error)
}

var (
	ErrDuplicateClient = errors.New("duplicate_client")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidTaxID    = errors.New("invalid_tax_id")
	ErrInvalidPhone    = errors.New("invalid_phone")
	ErrInvalidID       = errors.New("invalid_id")
	ErrNotFound        = errors.New("not_found")
)
