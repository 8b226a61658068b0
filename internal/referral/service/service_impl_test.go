package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
	accountrepo "github.com/atomoco/atomo/internal/account/repository"
	"github.com/atomoco/atomo/internal/config"
	"github.com/atomoco/atomo/internal/referral/domain"
	"github.com/atomoco/atomo/internal/sessionctx"
	"github.com/bwmarrin/snowflake"
)

func setup(t *testing.T) (domain.Service, accountdomain.Repository, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&accountdomain.Account{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	accounts := accountrepo.NewRepository(db)
	svc := NewService(ServiceParam{
		Cfg:      config.Config{BaseURL: "https://atomo.co"},
		Accounts: accounts,
		Log:      zap.NewNop(),
	})
	return svc, accounts, node
}

func seed(t *testing.T, accounts accountdomain.Repository, node *snowflake.Node, name, code string, referredBy *string) *accountdomain.Account {
	t.Helper()
	account := &accountdomain.Account{
		ID:           node.Generate(),
		Handle:       node.Generate().String() + "@example.com",
		PasswordHash: "x",
		DisplayName:  name,
		BrandColor:   accountdomain.DefaultBrandColor,
		ReferralCode: code,
		ReferredBy:   referredBy,
		Credits:      5,
	}
	require.NoError(t, accounts.Insert(context.Background(), account))
	return account
}

func TestMintCodeShape(t *testing.T) {
	svc, _, _ := setup(t)

	tests := []struct {
		name   string
		prefix string
	}{
		{"María Pérez", "MARÍ"},
		{"Jo", "JO"},
		{"  - ", "ATOM"},
		{"b2b studio", "B2BS"},
	}

	pattern := regexp.MustCompile(`^.+\d{3}$`)
	for _, tc := range tests {
		code := svc.MintCode(tc.name)
		assert.True(t, pattern.MatchString(code), "code %q", code)
		assert.Contains(t, code, tc.prefix)
	}
}

func TestApplyRewardsReferrer(t *testing.T) {
	svc, accounts, node := setup(t)
	referrer := seed(t, accounts, node, "Ana", "ANA123", nil)

	require.NoError(t, svc.Apply(context.Background(), "ANA123"))

	reloaded, err := accounts.FindByID(context.Background(), referrer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5+domain.RewardCredits), reloaded.Credits)
}

func TestApplyUnknownCodeIsSilent(t *testing.T) {
	svc, accounts, node := setup(t)
	bystander := seed(t, accounts, node, "Ana", "ANA123", nil)

	assert.NoError(t, svc.Apply(context.Background(), "NOPE999"))
	assert.NoError(t, svc.Apply(context.Background(), ""))
	assert.NoError(t, svc.Apply(context.Background(), "   "))

	reloaded, err := accounts.FindByID(context.Background(), bystander.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), reloaded.Credits)
}

func TestOverview(t *testing.T) {
	svc, accounts, node := setup(t)
	owner := seed(t, accounts, node, "Ana", "ANA123", nil)
	code := owner.ReferralCode
	seed(t, accounts, node, "Bruno", "BRUN001", &code)
	seed(t, accounts, node, "Carla", "CARL002", &code)

	ctx := sessionctx.WithAccountID(context.Background(), owner.ID)
	overview, err := svc.Overview(ctx)
	require.NoError(t, err)

	assert.Equal(t, "ANA123", overview.Code)
	assert.Equal(t, "https://atomo.co/?ref=ANA123", overview.Link)
	assert.ElementsMatch(t, []string{"Bruno", "Carla"}, overview.Referred)
	assert.Equal(t, int64(2*domain.RewardCredits), overview.Earned)
}

func TestOverviewRequiresSession(t *testing.T) {
	svc, _, _ := setup(t)

	_, err := svc.Overview(context.Background())
	assert.ErrorIs(t, err, accountdomain.ErrNotFound)
}
