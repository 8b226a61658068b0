package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type VerificationResult struct {
	Matched  bool   `json:"matched"`
	Detail   string `json:"detail,omitempty"`
	Verified bool   `json:"verified"`
	Credits  int64  `json:"credits"`
}

type Service interface {
	// AuthorizeTx decides whether the account may issue a document right
	// now and applies the debit, inside the caller's transaction: a
	// subscribed account issues free of charge, otherwise exactly one
	// credit is consumed through a guarded update. A *DeniedError return
	// leaves no state change.
	AuthorizeTx(ctx context.Context, tx *gorm.DB, accountID snowflake.ID) (Decision, error)

	// VerifyIdentity runs the external face-similarity check. The first
	// successful match sets the verified flag permanently and grants the
	// one-time bonus; later calls are no-ops.
	VerifyIdentity(ctx context.Context, accountID snowflake.ID, documentImage, selfieImage []byte) (*VerificationResult, error)

	// ActivateSubscription extends the subscription to today plus the
	// plan duration. An existing unexpired window is overwritten, not
	// stacked.
	ActivateSubscription(ctx context.Context, accountID snowflake.ID, plan Plan) error
}

var (
	ErrAccountNotFound = errors.New("account_not_found")
	ErrInvalidPlan     = errors.New("invalid_plan")
)
