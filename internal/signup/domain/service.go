// Package domain models the two-step signup: an emailed one-time code,
// then account creation with the initial credit allotment.
package domain

import (
	"context"
	"errors"
	"time"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
)

// SignupCode is a pending registration. One row per handle; restarting
// the flow overwrites the previous code.
type SignupCode struct {
	Handle       string    `gorm:"primaryKey" json:"handle"`
	Name         string    `gorm:"not null" json:"name"`
	PasswordHash string    `gorm:"not null" json:"-"`
	ReferralCode string    `gorm:"column:referral_code" json:"-"`
	Code         string    `gorm:"not null" json:"-"`
	ExpiresAt    time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (SignupCode) TableName() string { return "signup_codes" }

type BeginRequest struct {
	Name         string `json:"name"`
	Handle       string `json:"handle"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code"`
}

type CompleteRequest struct {
	Handle string `json:"handle"`
	Code   string `json:"code"`
}

type Service interface {
	// Begin validates the registration, stores it as pending and emails
	// the one-time code.
	Begin(ctx context.Context, req BeginRequest) error

	// Complete checks the code and creates the account. A referral code
	// captured at Begin is applied exactly once, here.
	Complete(ctx context.Context, req CompleteRequest) (*accountdomain.Account, error)
}

type Repository interface {
	Upsert(ctx context.Context, code *SignupCode) error
	FindByHandle(ctx context.Context, handle string) (*SignupCode, error)
	Delete(ctx context.Context, handle string) error
	DeleteExpired(ctx context.Context, before time.Time) error
}

var (
	ErrInvalidRequest = errors.New("invalid_signup_request")
	ErrHandleTaken    = errors.New("handle_taken")
	ErrInvalidCode    = errors.New("invalid_code")
	ErrCodeExpired    = errors.New("code_expired")
)
