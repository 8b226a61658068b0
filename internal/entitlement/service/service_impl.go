package service

import (
	"context"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
	"github.com/atomoco/atomo/internal/clock"
	domain "github.com/atomoco/atomo/internal/entitlement/domain"
	"github.com/atomoco/atomo/internal/providers/identity"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Accounts accountdomain.Repository
	Identity identity.Provider
	Clock    clock.Clock
	Log      *zap.Logger
}

type service struct {
	db       *gorm.DB
	accounts accountdomain.Repository
	identity identity.Provider
	clock    clock.Clock
	log      *zap.Logger
}

func NewService(p ServiceParam) domain.Service {
	return &service{
		db:       p.DB,
		accounts: p.Accounts,
		identity: p.Identity,
		clock:    p.Clock,
		log:      p.Log.Named("entitlement.service"),
	}
}

func (s *service) AuthorizeTx(ctx context.Context, tx *gorm.DB, accountID snowflake.ID) (domain.Decision, error) {
	var account accountdomain.Account
	if err := tx.WithContext(ctx).First(&account, "id = ?", accountID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Decision{}, domain.ErrAccountNotFound
		}
		return domain.Decision{}, err
	}

	now := s.clock.Now()
	if account.Subscribed(now) {
		return domain.Decision{State: domain.StateSubscribed}, nil
	}

	// Guarded debit: the predicate re-checks the balance at write time,
	// so two concurrent issuances can never both spend the last credit.
	res := tx.WithContext(ctx).Exec(
		"UPDATE accounts SET credits = credits - 1, updated_at = ? WHERE id = ? AND credits > 0",
		now, accountID,
	)
	if res.Error != nil {
		return domain.Decision{}, res.Error
	}
	if res.RowsAffected == 0 {
		reason := domain.ReasonNeedsVerification
		if account.Verified {
			reason = domain.ReasonNeedsSubscription
		}
		s.log.Info("issuance denied",
			zap.Int64("account_id", int64(accountID)),
			zap.String("reason", string(reason)),
		)
		return domain.Decision{}, &domain.DeniedError{Reason: reason}
	}

	return domain.Decision{State: domain.StateCreditEligible, DebitCredit: true}, nil
}

func (s *service) VerifyIdentity(ctx context.Context, accountID snowflake.ID, documentImage, selfieImage []byte) (*domain.VerificationResult, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrAccountNotFound
	}
	if account.Verified {
		// Verification is one-shot; the bonus is never granted twice.
		return &domain.VerificationResult{
			Matched:  true,
			Verified: true,
			Credits:  account.Credits,
		}, nil
	}

	verdict, err := s.identity.CompareFaces(ctx, documentImage, selfieImage)
	if err != nil {
		return nil, err
	}
	if !verdict.Matched {
		return &domain.VerificationResult{
			Matched: false,
			Detail:  verdict.Detail,
			Credits: account.Credits,
		}, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The predicate keeps a concurrent duplicate request from
		// granting the bonus a second time.
		res := tx.Exec(
			"UPDATE accounts SET verified = true, updated_at = ? WHERE id = ? AND verified = false",
			s.clock.Now(), accountID,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return s.accounts.AddCredits(ctx, tx, accountID, domain.VerificationBonusCredits)
	})
	if err != nil {
		return nil, err
	}

	account, err = s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	s.log.Info("identity verified", zap.Int64("account_id", int64(accountID)))

	return &domain.VerificationResult{
		Matched:  true,
		Detail:   verdict.Detail,
		Verified: true,
		Credits:  account.Credits,
	}, nil
}

func (s *service) ActivateSubscription(ctx context.Context, accountID snowflake.ID, plan domain.Plan) error {
	if !plan.Valid() {
		return domain.ErrInvalidPlan
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return domain.ErrAccountNotFound
	}

	// Always anchored at today: activating while a window is still open
	// replaces the old expiry instead of extending it.
	until := s.clock.Now().Add(plan.Duration())
	account.SubscriptionUntil = &until

	if err := s.accounts.Update(ctx, account); err != nil {
		return err
	}
	s.log.Info("subscription activated",
		zap.Int64("account_id", int64(accountID)),
		zap.Int("plan_days", int(plan)),
		zap.Time("until", until),
	)
	return nil
}
