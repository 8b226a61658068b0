package repository

import (
	"context"
	"errors"
	"time"

	signupdomain "github.com/atomoco/atomo/internal/signup/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) signupdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, code *signupdomain.SignupCode) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "handle"}},
		UpdateAll: true,
	}).Create(code).Error
}

func (r *repository) FindByHandle(ctx context.Context, handle string) (*signupdomain.SignupCode, error) {
	var code signupdomain.SignupCode
	err := r.db.WithContext(ctx).First(&code, "handle = ?", handle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *repository) Delete(ctx context.Context, handle string) error {
	return r.db.WithContext(ctx).Delete(&signupdomain.SignupCode{}, "handle = ?", handle).Error
}

func (r *repository) DeleteExpired(ctx context.Context, before time.Time) error {
	return r.db.WithContext(ctx).Delete(&signupdomain.SignupCode{}, "expires_at < ?", before).Error
}
