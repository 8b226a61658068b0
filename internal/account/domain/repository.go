package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id snowflake.ID) (*Account, error)
	FindByHandle(ctx context.Context, handle string) (*Account, error)
	FindByReferralCode(ctx context.Context, code string) (*Account, error)
	ListReferredNames(ctx context.Context, code string) ([]string, error)
	Update(ctx context.Context, account *Account) error

	// AddCredits atomically adds delta to the account's balance. Used by
	// the referral grant and the verification bonus; issuance debits go
	// through the entitlement gate's guarded update instead.
	AddCredits(ctx context.Context, tx *gorm.DB, id snowflake.ID, delta int64) error
}
