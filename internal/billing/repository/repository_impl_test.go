package repository

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
	billingdomain "github.com/atomoco/atomo/internal/billing/domain"
)

func TestLockAccount(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&accountdomain.Account{}, &billingdomain.Document{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	account := &accountdomain.Account{
		ID:           node.Generate(),
		Handle:       "laura@example.com",
		PasswordHash: "x",
		DisplayName:  "Laura Gómez",
		BrandColor:   accountdomain.DefaultBrandColor,
		ReferralCode: "LAUR001",
		Credits:      5,
	}
	require.NoError(t, db.Create(account).Error)

	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.LockAccount(ctx, tx, account.ID)
	}))

	// A missing issuing account is an account error, not a document one.
	err = db.Transaction(func(tx *gorm.DB) error {
		return repo.LockAccount(ctx, tx, node.Generate())
	})
	assert.ErrorIs(t, err, accountdomain.ErrNotFound)
	assert.NotErrorIs(t, err, billingdomain.ErrDocumentNotFound)
}
