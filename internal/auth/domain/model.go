package domain

import (
	"context"
	"errors"
	"time"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
	"github.com/bwmarrin/snowflake"
)

// Session is an authenticated browser session, created at login and
// discarded at logout or expiry.
type Session struct {
	Token     string       `gorm:"primaryKey" json:"-"`
	AccountID snowflake.ID `gorm:"not null;index" json:"account_id"`
	ExpiresAt time.Time    `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Session) TableName() string { return "sessions" }

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrSessionNotFound    = errors.New("session_not_found")
)

type Service interface {
	// Login verifies the handle/password pair and mints a session.
	Login(ctx context.Context, handle, plainPassword string) (*Session, *accountdomain.Account, error)

	Logout(ctx context.Context, token string) error

	// Resolve maps a session token to its account, rejecting expired
	// sessions.
	Resolve(ctx context.Context, token string) (snowflake.ID, error)
}

type Repository interface {
	Insert(ctx context.Context, session *Session) error
	FindByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, before time.Time) error
}
