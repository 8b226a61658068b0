package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateTargetRequest struct {
	Bank          string     `json:"bank"`
	AccountNumber string     `json:"account_number"`
	Kind          TargetKind `json:"kind"`
	Alias         *string    `json:"alias,omitempty"`
	QR            []byte     `json:"-"`
}

type Service interface {
	Create(ctx context.Context, req CreateTargetRequest) (*PaymentTarget, error)
	List(ctx context.Context) ([]PaymentTarget, error)
	Archive(ctx context.Context, id string) error
}

type Repository interface {
	Insert(ctx context.Context, target *PaymentTarget) error
	// FindByID returns the target regardless of archive state; document
	// rendering must keep resolving archived snapshots.
	FindByID(ctx context.Context, id snowflake.ID) (*PaymentTarget, error)
	ListActive(ctx context.Context, accountID snowflake.ID) ([]PaymentTarget, error)
	Archive(ctx context.Context, accountID, id snowflake.ID) error
}

var (
	ErrInvalidBank          = errors.New("invalid_bank")
	ErrInvalidAccountNumber = errors.New("invalid_account_number")
	ErrInvalidKind          = errors.New("invalid_kind")
	ErrInvalidID            = errors.New("invalid_id")
	ErrNotFound             = errors.New("not_found")
)
