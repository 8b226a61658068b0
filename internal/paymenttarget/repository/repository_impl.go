package repository

import (
	"context"
	"errors"
	"time"

	targetdomain "github.com/atomoco/atomo/internal/paymenttarget/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) targetdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, target *targetdomain.PaymentTarget) error {
	return r.db.WithContext(ctx).Create(target).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*targetdomain.PaymentTarget, error) {
	var target targetdomain.PaymentTarget
	err := r.db.WithContext(ctx).First(&target, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &target, nil
}

func (r *repository) ListActive(ctx context.Context, accountID snowflake.ID) ([]targetdomain.PaymentTarget, error) {
	var targets []targetdomain.PaymentTarget
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND archived_at IS NULL", accountID).
		Order("created_at ASC").
		Find(&targets).Error
	if err != nil {
		return nil, err
	}
	return targets, nil
}

func (r *repository) Archive(ctx context.Context, accountID, id snowflake.ID) error {
	res := r.db.WithContext(ctx).Exec(
		`UPDATE payment_targets
		 SET archived_at = ?
		 WHERE account_id = ? AND id = ? AND archived_at IS NULL`,
		time.Now().UTC(),
		accountID,
		id,
	)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return targetdomain.ErrNotFound
	}
	return nil
}
