package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
	"github.com/atomoco/atomo/internal/config"
	"github.com/atomoco/atomo/internal/referral/domain"
	"github.com/atomoco/atomo/internal/sessionctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const codeFallbackPrefix = "ATOM"

type ServiceParam struct {
	fx.In

	Cfg      config.Config
	Accounts accountdomain.Repository
	Log      *zap.Logger
}

type service struct {
	cfg      config.Config
	accounts accountdomain.Repository
	log      *zap.Logger
}

func NewService(p ServiceParam) domain.Service {
	return &service{
		cfg:      p.Cfg,
		accounts: p.Accounts,
		log:      p.Log.Named("referral.service"),
	}
}

// MintCode builds a code like "MARI483": up to four letters or digits
// from the display name, then three random digits. Collisions are
// handled by the caller retrying against the unique index.
func (s *service) MintCode(name string) string {
	var prefix strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			prefix.WriteRune(unicode.ToUpper(r))
			if prefix.Len() >= 4 {
				break
			}
		}
	}
	if prefix.Len() == 0 {
		prefix.WriteString(codeFallbackPrefix)
	}
	return fmt.Sprintf("%s%03d", prefix.String(), rand.Intn(1000))
}

func (s *service) Apply(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}

	referrer, err := s.accounts.FindByReferralCode(ctx, code)
	if err != nil {
		return err
	}
	if referrer == nil {
		s.log.Debug("unknown referral code ignored", zap.String("code", code))
		return nil
	}

	if err := s.accounts.AddCredits(ctx, nil, referrer.ID, domain.RewardCredits); err != nil {
		return err
	}
	s.log.Info("referral reward granted",
		zap.Int64("referrer_id", int64(referrer.ID)),
		zap.String("code", code),
	)
	return nil
}

func (s *service) Overview(ctx context.Context) (*domain.Overview, error) {
	accountID, ok := sessionctx.AccountIDFromContext(ctx)
	if !ok {
		return nil, accountdomain.ErrNotFound
	}
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, accountdomain.ErrNotFound
	}

	referred, err := s.accounts.ListReferredNames(ctx, account.ReferralCode)
	if err != nil {
		return nil, err
	}

	return &domain.Overview{
		Code:     account.ReferralCode,
		Link:     fmt.Sprintf("%s/?ref=%s", s.cfg.BaseURL, account.ReferralCode),
		Referred: referred,
		Earned:   int64(len(referred)) * domain.RewardCredits,
	}, nil
}
