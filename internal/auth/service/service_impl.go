package service

import (
	"context"
	"strings"
	"time"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
	authdomain "github.com/atomoco/atomo/internal/auth/domain"
	"github.com/atomoco/atomo/internal/auth/password"
	"github.com/atomoco/atomo/internal/clock"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// SessionTTL bounds how long a login stays valid without re-auth.
const SessionTTL = 30 * 24 * time.Hour

type ServiceParam struct {
	fx.In

	Repo     authdomain.Repository
	Accounts accountdomain.Repository
	Clock    clock.Clock
	Log      *zap.Logger
}

type service struct {
	repo     authdomain.Repository
	accounts accountdomain.Repository
	clock    clock.Clock
	log      *zap.Logger
}

func NewService(p ServiceParam) authdomain.Service {
	return &service{
		repo:     p.Repo,
		accounts: p.Accounts,
		clock:    p.Clock,
		log:      p.Log.Named("auth.service"),
	}
}

func (s *service) Login(ctx context.Context, handle, plainPassword string) (*authdomain.Session, *accountdomain.Account, error) {
	handle = strings.ToLower(strings.TrimSpace(handle))
	account, err := s.accounts.FindByHandle(ctx, handle)
	if err != nil {
		return nil, nil, err
	}
	if account == nil || !password.Verify(plainPassword, account.PasswordHash) {
		return nil, nil, authdomain.ErrInvalidCredentials
	}

	now := s.clock.Now()
	session := &authdomain.Session{
		Token:     uuid.NewString(),
		AccountID: account.ID,
		ExpiresAt: now.Add(SessionTTL),
	}
	if err := s.repo.Insert(ctx, session); err != nil {
		return nil, nil, err
	}

	// Opportunistic cleanup keeps the sessions table from growing
	// unbounded without a dedicated sweeper.
	if err := s.repo.DeleteExpired(ctx, now); err != nil {
		s.log.Warn("expired session cleanup failed", zap.Error(err))
	}

	s.log.Info("login", zap.Int64("account_id", int64(account.ID)))
	return session, account, nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	return s.repo.Delete(ctx, token)
}

func (s *service) Resolve(ctx context.Context, token string) (snowflake.ID, error) {
	session, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		return 0, err
	}
	if session == nil || session.ExpiresAt.Before(s.clock.Now()) {
		return 0, authdomain.ErrSessionNotFound
	}
	return session.AccountID, nil
}
