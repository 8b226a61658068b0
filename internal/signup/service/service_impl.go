package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
	"github.com/atomoco/atomo/internal/auth/password"
	"github.com/atomoco/atomo/internal/clock"
	entitlementdomain "github.com/atomoco/atomo/internal/entitlement/domain"
	"github.com/atomoco/atomo/internal/observability"
	"github.com/atomoco/atomo/internal/providers/email"
	referraldomain "github.com/atomoco/atomo/internal/referral/domain"
	signupdomain "github.com/atomoco/atomo/internal/signup/domain"
	"github.com/atomoco/atomo/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	codeTTL           = 15 * time.Minute
	minPasswordLength = 6
	mintRetries       = 3
)

type ServiceParam struct {
	fx.In

	Repo      signupdomain.Repository
	Accounts  accountdomain.Repository
	Referrals referraldomain.Service
	Email     email.Provider
	Metrics   *observability.Metrics
	Clock     clock.Clock
	GenID     *snowflake.Node
	Log       *zap.Logger
}

type service struct {
	repo      signupdomain.Repository
	accounts  accountdomain.Repository
	referrals referraldomain.Service
	email     email.Provider
	metrics   *observability.Metrics
	clock     clock.Clock
	genID     *snowflake.Node
	log       *zap.Logger
}

func NewService(p ServiceParam) signupdomain.Service {
	return &service{
		repo:      p.Repo,
		accounts:  p.Accounts,
		referrals: p.Referrals,
		email:     p.Email,
		metrics:   p.Metrics,
		clock:     p.Clock,
		genID:     p.GenID,
		log:       p.Log.Named("signup.service"),
	}
}

func (s *service) Begin(ctx context.Context, req signupdomain.BeginRequest) error {
	name := strings.TrimSpace(req.Name)
	handle := strings.ToLower(strings.TrimSpace(req.Handle))
	if name == "" || !strings.Contains(handle, "@") {
		return signupdomain.ErrInvalidRequest
	}
	if len(req.Password) < minPasswordLength {
		return signupdomain.ErrInvalidRequest
	}

	existing, err := s.accounts.FindByHandle(ctx, handle)
	if err != nil {
		return err
	}
	if existing != nil {
		return signupdomain.ErrHandleTaken
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return err
	}

	otp := fmt.Sprintf("%06d", rand.Intn(1000000))
	pending := &signupdomain.SignupCode{
		Handle:       handle,
		Name:         name,
		PasswordHash: hash,
		ReferralCode: strings.TrimSpace(req.ReferralCode),
		Code:         otp,
		ExpiresAt:    s.clock.Now().Add(codeTTL),
	}
	if err := s.repo.Upsert(ctx, pending); err != nil {
		return err
	}

	subject := fmt.Sprintf("Código: %s", otp)
	body := fmt.Sprintf("Tu código de verificación es <b>%s</b>. Expira en 15 minutos.", otp)
	if err := s.email.Send(ctx, []string{handle}, subject, body); err != nil {
		return err
	}

	s.log.Info("signup code sent", zap.String("handle", handle))
	return nil
}

func (s *service) Complete(ctx context.Context, req signupdomain.CompleteRequest) (*accountdomain.Account, error) {
	handle := strings.ToLower(strings.TrimSpace(req.Handle))
	pending, err := s.repo.FindByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if pending == nil || pending.Code != strings.TrimSpace(req.Code) {
		return nil, signupdomain.ErrInvalidCode
	}
	if pending.ExpiresAt.Before(s.clock.Now()) {
		return nil, signupdomain.ErrCodeExpired
	}

	var referredBy *string
	if pending.ReferralCode != "" {
		code := pending.ReferralCode
		referredBy = &code
	}

	created, err := s.createAccount(ctx, pending, referredBy)
	if err != nil {
		return nil, err
	}

	// A stale or mistyped referral code never blocks signup.
	if pending.ReferralCode != "" {
		if err := s.referrals.Apply(ctx, pending.ReferralCode); err != nil {
			s.log.Warn("referral apply failed", zap.Error(err))
		}
	}

	if err := s.repo.Delete(ctx, handle); err != nil {
		s.log.Warn("pending signup cleanup failed", zap.Error(err))
	}

	s.metrics.Signup()
	s.log.Info("account created", zap.Int64("account_id", int64(created.ID)))
	return created, nil
}

// createAccount inserts the account, re-minting the referral code on
// the rare collision with the unique index.
func (s *service) createAccount(ctx context.Context, pending *signupdomain.SignupCode, referredBy *string) (*accountdomain.Account, error) {
	var lastErr error
	for attempt := 0; attempt < mintRetries; attempt++ {
		account := &accountdomain.Account{
			ID:           s.genID.Generate(),
			Handle:       pending.Handle,
			PasswordHash: pending.PasswordHash,
			DisplayName:  pending.Name,
			BrandColor:   accountdomain.DefaultBrandColor,
			ReferralCode: s.referrals.MintCode(pending.Name),
			ReferredBy:   referredBy,
			Credits:      entitlementdomain.InitialCredits,
		}
		if err := s.accounts.Insert(ctx, account); err != nil {
			if db.IsDuplicateKeyErr(err) {
				lastErr = err
				continue
			}
			return nil, err
		}
		return account, nil
	}
	return nil, lastErr
}
