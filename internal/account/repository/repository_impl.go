package repository

import (
	"context"
	"errors"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) accountdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, account *accountdomain.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *repository) FindByID(ctx context.Context, id snowflake.ID) (*accountdomain.Account, error) {
	var account accountdomain.Account
	err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) FindByHandle(ctx context.Context, handle string) (*accountdomain.Account, error) {
	var account accountdomain.Account
	err := r.db.WithContext(ctx).First(&account, "handle = ?", handle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) FindByReferralCode(ctx context.Context, code string) (*accountdomain.Account, error) {
	var account accountdomain.Account
	err := r.db.WithContext(ctx).First(&account, "referral_code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) ListReferredNames(ctx context.Context, code string) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).Raw(
		`SELECT display_name
		 FROM accounts
		 WHERE referred_by = ?
		 ORDER BY created_at ASC`,
		code,
	).Scan(&names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (r *repository) Update(ctx context.Context, account *accountdomain.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *repository) AddCredits(ctx context.Context, tx *gorm.DB, id snowflake.ID, delta int64) error {
	conn := tx
	if conn == nil {
		conn = r.db
	}
	return conn.WithContext(ctx).Exec(
		`UPDATE accounts
		 SET credits = credits + ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		delta,
		id,
	).Error
}
