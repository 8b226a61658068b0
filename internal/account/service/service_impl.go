package service

import (
	"context"
	"regexp"
	"strings"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
	"github.com/atomoco/atomo/internal/sessionctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	numericRe   = regexp.MustCompile(`^\d+$`)
	hexColorRe  = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// IsNumeric reports whether s is a non-empty string of digits. Tax ids,
// phone numbers and account numbers must pass this before any write.
func IsNumeric(s string) bool {
	return numericRe.MatchString(s)
}

type ServiceParam struct {
	fx.In

	Repo accountdomain.Repository
	Log  *zap.Logger
}

type service struct {
	repo accountdomain.Repository
	log  *zap.Logger
}

func NewService(p ServiceParam) accountdomain.Service {
	return &service{
		repo: p.Repo,
		log:  p.Log.Named("account.service"),
	}
}

func (s *service) Get(ctx context.Context) (*accountdomain.Account, error) {
	accountID, ok := sessionctx.AccountIDFromContext(ctx)
	if !ok {
		return nil, accountdomain.ErrNotFound
	}
	account, err := s.repo.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, accountdomain.ErrNotFound
	}
	return account, nil
}

func (s *service) UpdateLegal(ctx context.Context, req accountdomain.UpdateLegalRequest) (*accountdomain.Account, error) {
	account, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if req.TaxID != "" && !IsNumeric(req.TaxID) {
		return nil, accountdomain.ErrInvalidTaxID
	}
	if req.Phone != "" && !IsNumeric(req.Phone) {
		return nil, accountdomain.ErrInvalidPhone
	}

	if name := strings.TrimSpace(req.DisplayName); name != "" {
		account.DisplayName = name
	}
	account.TaxID = req.TaxID
	account.Phone = req.Phone
	account.Address = strings.TrimSpace(req.Address)
	account.ContactEmail = strings.TrimSpace(req.ContactEmail)
	if len(req.Signature) > 0 {
		account.Signature = req.Signature
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *service) UpdateBranding(ctx context.Context, req accountdomain.UpdateBrandingRequest) (*accountdomain.Account, error) {
	account, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if req.BrandColor != "" {
		if !hexColorRe.MatchString(req.BrandColor) {
			return nil, accountdomain.ErrInvalidColor
		}
		account.BrandColor = req.BrandColor
	}
	account.Slogan = strings.TrimSpace(req.Slogan)
	if len(req.Logo) > 0 {
		account.Logo = req.Logo
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}
