package service

import (
	"context"
	"strings"

	accountservice "github.com/atomoco/atomo/internal/account/service"
	clientdomain "github.com/atomoco/atomo/internal/client/domain"
	"github.com/atomoco/atomo/internal/sessionctx"
	"github.com/atomoco/atomo/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Repo  clientdomain.Repository
	GenID *snowflake.Node
	Log   *zap.Logger
}

type service struct {
	repo  clientdomain.Repository
	genID *snowflake.Node
	log   *zap.Logger
}

func NewService(p ServiceParam) clientdomain.Service {
	return &service{
		repo:  p.Repo,
		genID: p.GenID,
		log:   p.Log.Named("client.service"),
	}
}

func (s *service) Create(ctx context.Context, req clientdomain.CreateClientRequest) (*clientdomain.Client, error) {
	accountID, ok := sessionctx.AccountIDFromContext(ctx)
	if !ok {
		return nil, clientdomain.ErrNotFound
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, clientdomain.ErrInvalidName
	}
	taxID := strings.TrimSpace(req.TaxID)
	if !accountservice.IsNumeric(taxID) {
		return nil, clientdomain.ErrInvalidTaxID
	}
	phone := strings.TrimSpace(req.Phone)
	if phone != "" && !accountservice.IsNumeric(phone) {
		return nil, clientdomain.ErrInvalidPhone
	}

	existing, err := s.repo.FindByTaxID(ctx, accountID, taxID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, clientdomain.ErrDuplicateClient
	}

	client := &clientdomain.Client{
		ID:        s.genID.Generate(),
		AccountID: accountID,
		Name:      name,
		TaxID:     taxID,
		City:      strings.TrimSpace(req.City),
		Email:     strings.TrimSpace(req.Email),
		Phone:     phone,
	}
	if err := s.repo.Insert(ctx, client); err != nil {
		// The unique index backs up the pre-check under races.
		if db.IsDuplicateKeyErr(err) {
			return nil, clientdomain.ErrDuplicateClient
		}
		return nil, err
	}
	return client, nil
}

func (s *service) List(ctx context.Context) ([]clientdomain.Client, error) {
	accountID, ok := sessionctx.AccountIDFromContext(ctx)
	if !ok {
		return nil, clientdomain.ErrNotFound
	}
	return s.repo.List(ctx, accountID)
}

func (s *service) GetByID(ctx context.Context, id string) (*clientdomain.Client, error) {
	accountID, ok := sessionctx.AccountIDFromContext(ctx)
	if !ok {
		return nil, clientdomain.ErrNotFound
	}
	clientID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, clientdomain.ErrInvalidID
	}
	client, err := s.repo.FindByID(ctx, accountID, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, clientdomain.ErrNotFound
	}
	return client, nil
}
