package repository

import (
	"context"
	"errors"
	"time"

	authdomain "github.com/atomoco/atomo/internal/auth/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) authdomain.Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, session *authdomain.Session) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *repository) FindByToken(ctx context.Context, token string) (*authdomain.Session, error) {
	var session authdomain.Session
	err := r.db.WithContext(ctx).First(&session, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) Delete(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Delete(&authdomain.Session{}, "token = ?", token).Error
}

func (r *repository) DeleteExpired(ctx context.Context, before time.Time) error {
	return r.db.WithContext(ctx).Delete(&authdomain.Session{}, "expires_at < ?", before).Error
}
