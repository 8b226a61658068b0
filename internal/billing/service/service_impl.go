package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
	domain "github.com/atomoco/atomo/internal/billing/domain"
	"github.com/atomoco/atomo/internal/billing/format"
	clientdomain "github.com/atomoco/atomo/internal/client/domain"
	"github.com/atomoco/atomo/internal/clock"
	entitlementdomain "github.com/atomoco/atomo/internal/entitlement/domain"
	"github.com/atomoco/atomo/internal/observability"
	targetdomain "github.com/atomoco/atomo/internal/paymenttarget/domain"
	"github.com/atomoco/atomo/internal/providers/email"
	"github.com/atomoco/atomo/internal/providers/pdf"
	"github.com/atomoco/atomo/internal/sessionctx"
	"github.com/atomoco/atomo/internal/tax"
	"github.com/atomoco/atomo/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// errSequenceRace signals that the insert hit the (account, sequence)
// unique index: another issuance committed between our MAX read and the
// insert. The outer loop retries once from re-authorization.
var errSequenceRace = errors.New("sequence_race")

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Repo        domain.Repository
	Accounts    accountdomain.Repository
	Clients     clientdomain.Repository
	Targets     targetdomain.Repository
	Entitlement entitlementdomain.Service
	PDF         pdf.Provider
	Email       email.Provider
	Metrics     *observability.Metrics
	Clock       clock.Clock
	GenID       *snowflake.Node
	Log         *zap.Logger
}

type service struct {
	db          *gorm.DB
	repo        domain.Repository
	accounts    accountdomain.Repository
	clients     clientdomain.Repository
	targets     targetdomain.Repository
	entitlement entitlementdomain.Service
	pdf         pdf.Provider
	email       email.Provider
	metrics     *observability.Metrics
	clock       clock.Clock
	genID       *snowflake.Node
	log         *zap.Logger
}

func NewService(p ServiceParam) domain.Service {
	return &service{
		db:          p.DB,
		repo:        p.Repo,
		accounts:    p.Accounts,
		clients:     p.Clients,
		targets:     p.Targets,
		entitlement: p.Entitlement,
		pdf:         p.PDF,
		email:       p.Email,
		metrics:     p.Metrics,
		clock:       p.Clock,
		genID:       p.GenID,
		log:         p.Log.Named("billing.service"),
	}
}

func (s *service) Issue(ctx context.Context, req domain.IssueRequest) (*domain.IssueResult, error) {
	accountID, ok := sessionctx.AccountIDFromContext(ctx)
	if !ok {
		return nil, accountdomain.ErrNotFound
	}

	if !req.Gross.IsPositive() {
		return nil, domain.ErrInvalidGross
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, domain.ErrInvalidDescription
	}
	city := strings.TrimSpace(req.City)
	if city == "" {
		return nil, domain.ErrInvalidCity
	}

	client, err := s.resolveClient(ctx, accountID, req.ClientID)
	if err != nil {
		return nil, err
	}
	target, err := s.resolveTarget(ctx, accountID, req.PaymentTargetID)
	if err != nil {
		return nil, err
	}

	amounts, err := tax.Compute(req.Gross, tax.Selection{Source: req.Source, Local: req.Local})
	if err != nil {
		return nil, err
	}

	localCity := ""
	if req.Local != nil {
		localCity = strings.TrimSpace(req.Local.City)
	}

	// Authorization, debit, numbering and insert commit atomically. A
	// duplicate-sequence insert rolls everything back, including the
	// debit, and the whole unit reruns once from re-authorization.
	var doc *domain.Document
	var decision entitlementdomain.Decision
	for attempt := 0; attempt < 2; attempt++ {
		doc = &domain.Document{
			ID:              s.genID.Generate(),
			AccountID:       accountID,
			IssueDate:       s.clock.Now(),
			ClientName:      client.Name,
			ClientTaxID:     client.TaxID,
			Description:     description,
			GrossAmount:     amounts.Gross,
			WithheldSource:  amounts.WithheldSource,
			WithheldLocal:   amounts.WithheldLocal,
			NetAmount:       amounts.Net,
			City:            city,
			LocalTaxCity:    localCity,
			PaymentTargetID: target.ID,
			Status:          domain.StatusPending,
		}

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.repo.LockAccount(ctx, tx, accountID); err != nil {
				return err
			}

			d, err := s.entitlement.AuthorizeTx(ctx, tx, accountID)
			if err != nil {
				return err
			}
			decision = d

			max, err := s.repo.MaxSequence(ctx, tx, accountID)
			if err != nil {
				return err
			}
			doc.Sequence = max + 1

			if err := s.repo.Insert(ctx, tx, doc); err != nil {
				if db.IsDuplicateKeyErr(err) {
					return errSequenceRace
				}
				return err
			}
			return nil
		})
		if err == nil {
			break
		}
		if errors.Is(err, errSequenceRace) {
			s.metrics.IssuanceConflict()
			s.log.Warn("issuance lost sequence race",
				zap.Int64("account_id", int64(accountID)),
				zap.Int("attempt", attempt+1),
			)
			err = domain.ErrPersistenceConflict
			continue
		}
		break
	}
	if err != nil {
		var denied *entitlementdomain.DeniedError
		if errors.As(err, &denied) {
			s.metrics.IssuanceDenied(string(denied.Reason))
		}
		return nil, err
	}

	s.metrics.DocumentIssued(string(decision.State))
	s.log.Info("document issued",
		zap.Int64("account_id", int64(accountID)),
		zap.Int64("sequence", doc.Sequence),
		zap.String("entitlement", string(decision.State)),
	)

	// The record is durable; rendering happens outside the transaction
	// and a failure here must not undo the issuance.
	pdfBytes, err := s.render(ctx, accountID, doc, target)
	if err != nil {
		s.metrics.RenderFailure()
		s.log.Error("post-commit render failed",
			zap.Int64("document_id", int64(doc.ID)),
			zap.Error(err),
		)
		pdfBytes = nil
	}

	return &domain.IssueResult{
		Document:    *doc,
		PDF:         pdfBytes,
		Filename:    documentFilename(doc.Sequence),
		NegativeNet: amounts.NegativeNet,
	}, nil
}

func (s *service) List(ctx context.Context) ([]domain.Document, error) {
	accountID, ok := sessionctx.AccountIDFromContext(ctx)
	if !ok {
		return nil, accountdomain.ErrNotFound
	}
	return s.repo.List(ctx, accountID)
}

func (s *service) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	accountID, ok := sessionctx.AccountIDFromContext(ctx)
	if !ok {
		return nil, accountdomain.ErrNotFound
	}
	docID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	doc, err := s.repo.FindByID(ctx, accountID, docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, nil
}

func (s *service) Render(ctx context.Context, id string) ([]byte, string, error) {
	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	// Archived targets still resolve: historic documents render their
	// original payment instructions.
	target, err := s.targets.FindByID(ctx, doc.PaymentTargetID)
	if err != nil {
		return nil, "", err
	}
	if target == nil {
		return nil, "", domain.ErrTargetNotFound
	}

	pdfBytes, err := s.render(ctx, doc.AccountID, doc, target)
	if err != nil {
		s.metrics.RenderFailure()
		return nil, "", err
	}
	return pdfBytes, documentFilename(doc.Sequence), nil
}

func (s *service) Send(ctx context.Context, id string) (bool, error) {
	doc, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	recipient, err := s.recipientFor(ctx, doc)
	if err != nil {
		return false, err
	}

	pdfBytes, filename, err := s.Render(ctx, id)
	if err != nil {
		return false, err
	}

	number := format.FormatDocumentNumber(doc.Sequence)
	sendErr := s.email.Send(ctx,
		[]string{recipient},
		fmt.Sprintf("Cuenta de Cobro #%s", number),
		"Hola, adjunto soporte de pago.",
		email.Attachment{Filename: filename, ContentType: "application/pdf", Data: pdfBytes},
	)
	delivered := sendErr == nil
	s.metrics.DocumentSent(delivered)
	if sendErr != nil {
		s.log.Warn("document delivery failed",
			zap.Int64("document_id", int64(doc.ID)),
			zap.Error(sendErr),
		)
	}
	return delivered, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	accountID, ok := sessionctx.AccountIDFromContext(ctx)
	if !ok {
		return accountdomain.ErrNotFound
	}
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}
	docID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.ErrInvalidID
	}
	return s.repo.UpdateStatus(ctx, accountID, docID, status)
}

func (s *service) Summary(ctx context.Context) (domain.Summary, error) {
	accountID, ok := sessionctx.AccountIDFromContext(ctx)
	if !ok {
		return domain.Summary{}, accountdomain.ErrNotFound
	}
	return s.repo.Summarize(ctx, accountID)
}

func (s *service) resolveClient(ctx context.Context, accountID snowflake.ID, id string) (*clientdomain.Client, error) {
	clientID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrClientNotFound
	}
	client, err := s.clients.FindByID(ctx, accountID, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrClientNotFound
	}
	return client, nil
}

func (s *service) resolveTarget(ctx context.Context, accountID snowflake.ID, id string) (*targetdomain.PaymentTarget, error) {
	targetID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, domain.ErrTargetNotFound
	}
	target, err := s.targets.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target == nil || target.AccountID != accountID {
		return nil, domain.ErrTargetNotFound
	}
	return target, nil
}

func (s *service) recipientFor(ctx context.Context, doc *domain.Document) (string, error) {
	// The document snapshots name and tax id but not the email; resolve
	// the live client record by the snapshotted tax id.
	client, err := s.clients.FindByTaxID(ctx, doc.AccountID, doc.ClientTaxID)
	if err != nil {
		return "", err
	}
	if client == nil || strings.TrimSpace(client.Email) == "" {
		return "", domain.ErrNoRecipient
	}
	return client.Email, nil
}

func (s *service) render(ctx context.Context, accountID snowflake.ID, doc *domain.Document, target *targetdomain.PaymentTarget) ([]byte, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, accountdomain.ErrNotFound
	}

	alias := ""
	if target.Alias != nil {
		alias = *target.Alias
	}
	contactEmail := account.ContactEmail
	if contactEmail == "" {
		contactEmail = account.Handle
	}

	return s.pdf.GenerateDocument(ctx, pdf.DocumentData{
		IssuerName:   account.DisplayName,
		IssuerTaxID:  account.TaxID,
		Slogan:       account.Slogan,
		Address:      account.Address,
		Phone:        account.Phone,
		ContactEmail: contactEmail,
		BrandColor:   account.BrandColor,
		Logo:         account.Logo,
		Signature:    account.Signature,

		Number:    format.FormatDocumentNumber(doc.Sequence),
		IssueDate: doc.IssueDate.Format("2006-01-02"),
		City:      doc.City,

		ClientName:  doc.ClientName,
		ClientTaxID: doc.ClientTaxID,
		Description: doc.Description,

		Gross:          doc.GrossAmount,
		WithheldSource: doc.WithheldSource,
		WithheldLocal:  doc.WithheldLocal,
		Net:            doc.NetAmount,

		Bank:          target.Bank,
		AccountKind:   string(target.Kind),
		AccountNumber: target.AccountNumber,
		Alias:         alias,
		QR:            target.QR,
	})
}

func documentFilename(sequence int64) string {
	return fmt.Sprintf("Cuenta_%s.pdf", format.FormatDocumentNumber(sequence))
}
