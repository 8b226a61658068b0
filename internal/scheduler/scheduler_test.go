package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authdomain "github.com/atomoco/atomo/internal/auth/domain"
	authrepo "github.com/atomoco/atomo/internal/auth/repository"
	"github.com/atomoco/atomo/internal/clock"
	signupdomain "github.com/atomoco/atomo/internal/signup/domain"
	signuprepo "github.com/atomoco/atomo/internal/signup/repository"
	"github.com/bwmarrin/snowflake"
)

func TestSweepDeletesOnlyExpiredRows(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&authdomain.Session{}, &signupdomain.SignupCode{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
	sessions := authrepo.NewRepository(db)
	codes := signuprepo.NewRepository(db)

	sched := New(Params{
		Sessions:    sessions,
		SignupCodes: codes,
		Clock:       fc,
		Log:         zap.NewNop(),
	}, time.Hour)

	ctx := context.Background()
	accountID := node.Generate()

	live := &authdomain.Session{Token: "live", AccountID: accountID, ExpiresAt: fc.Now().Add(time.Hour)}
	dead := &authdomain.Session{Token: "dead", AccountID: accountID, ExpiresAt: fc.Now().Add(-time.Hour)}
	require.NoError(t, sessions.Insert(ctx, live))
	require.NoError(t, sessions.Insert(ctx, dead))

	require.NoError(t, codes.Upsert(ctx, &signupdomain.SignupCode{
		Handle: "fresh@example.com", Code: "111111", ExpiresAt: fc.Now().Add(10 * time.Minute),
	}))
	require.NoError(t, codes.Upsert(ctx, &signupdomain.SignupCode{
		Handle: "stale@example.com", Code: "222222", ExpiresAt: fc.Now().Add(-10 * time.Minute),
	}))

	sched.Sweep(ctx)

	kept, err := sessions.FindByToken(ctx, "live")
	require.NoError(t, err)
	assert.NotNil(t, kept)
	gone, err := sessions.FindByToken(ctx, "dead")
	require.NoError(t, err)
	assert.Nil(t, gone)

	fresh, err := codes.FindByHandle(ctx, "fresh@example.com")
	require.NoError(t, err)
	assert.NotNil(t, fresh)
	stale, err := codes.FindByHandle(ctx, "stale@example.com")
	require.NoError(t, err)
	assert.Nil(t, stale)

	// Advancing past the remaining expiries sweeps the rest.
	fc.Advance(2 * time.Hour)
	sched.Sweep(ctx)

	kept, err = sessions.FindByToken(ctx, "live")
	require.NoError(t, err)
	assert.Nil(t, kept)
}

func TestNewClampsShortIntervals(t *testing.T) {
	sched := New(Params{Log: zap.NewNop(), Clock: clock.New()}, time.Millisecond)
	assert.Equal(t, minSweepInterval, sched.interval)
}
