package service

import (
	"context"
	"strings"

	accountservice "github.com/atomoco/atomo/internal/account/service"
	targetdomain "github.com/atomoco/atomo/internal/paymenttarget/domain"
	"github.com/atomoco/atomo/internal/sessionctx"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Repo  targetdomain.Repository
	GenID *snowflake.Node
	Log   *zap.Logger
}

type service struct {
	repo  targetdomain.Repository
	genID *snowflake.Node
	log   *zap.Logger
}

func NewService(p ServiceParam) targetdomain.Service {
	return &service{
		repo:  p.Repo,
		genID: p.GenID,
		log:   p.Log.Named("paymenttarget.service"),
	}
}

func (s *service) Create(ctx context.Context, req targetdomain.CreateTargetRequest) (*targetdomain.PaymentTarget, error) {
	accountID, ok := sessionctx.AccountIDFromContext(ctx)
	if !ok {
		return nil, targetdomain.ErrNotFound
	}

	bank := strings.TrimSpace(req.Bank)
	if bank == "" {
		return nil, targetdomain.ErrInvalidBank
	}
	number := strings.TrimSpace(req.AccountNumber)
	if !accountservice.IsNumeric(number) {
		return nil, targetdomain.ErrInvalidAccountNumber
	}
	if !req.Kind.Valid() {
		return nil, targetdomain.ErrInvalidKind
	}

	target := &targetdomain.PaymentTarget{
		ID:            s.genID.Generate(),
		AccountID:     accountID,
		Bank:          bank,
		AccountNumber: number,
		Kind:          req.Kind,
		Alias:         req.Alias,
		QR:            req.QR,
	}
	if err := s.repo.Insert(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

func (s *service) List(ctx context.Context) ([]targetdomain.PaymentTarget, error) {
	accountID, ok := sessionctx.AccountIDFromContext(ctx)
	if !ok {
		return nil, targetdomain.ErrNotFound
	}
	return s.repo.ListActive(ctx, accountID)
}

func (s *service) Archive(ctx context.Context, id string) error {
	accountID, ok := sessionctx.AccountIDFromContext(ctx)
	if !ok {
		return targetdomain.ErrNotFound
	}
	targetID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return targetdomain.ErrInvalidID
	}
	return s.repo.Archive(ctx, accountID, targetID)
}
