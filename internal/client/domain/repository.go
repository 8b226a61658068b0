package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Insert(ctx context.Context, client *Client) error
	FindByID(ctx context.Context, accountID, id snowflake.ID) (*Client, error)
	FindByTaxID(ctx context.Context, accountID snowflake.ID, taxID string) (*Client, error)
	List(ctx context.Context, accountID snowflake.ID) ([]Client, error)
}
