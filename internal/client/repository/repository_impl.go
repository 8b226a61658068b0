package repository

import (
	"context"
	"errors"

	clientdomain "github.com/atomoco/atomo/internal/client/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) clientdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, client *clientdomain.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *repository) FindByID(ctx context.Context, accountID, id snowflake.ID) (*clientdomain.Client, error) {
	var client clientdomain.Client
	err := r.db.WithContext(ctx).First(&client, "account_id = ? AND id = ?", accountID, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) FindByTaxID(ctx context.Context, accountID snowflake.ID, taxID string) (*clientdomain.Client, error) {
	var client clientdomain.Client
	err := r.db.WithContext(ctx).First(&client, "account_id = ? AND tax_id = ?", accountID, taxID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) List(ctx context.Context, accountID snowflake.ID) ([]clientdomain.Client, error) {
	var clients []clientdomain.Client
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at ASC").
		Find(&clients).Error
	if err != nil {
		return nil, err
	}
	return clients, nil
}
