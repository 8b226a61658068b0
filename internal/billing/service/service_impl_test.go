package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
	accountrepo "github.com/atomoco/atomo/internal/account/repository"
	domain "github.com/atomoco/atomo/internal/billing/domain"
	billingrepo "github.com/atomoco/atomo/internal/billing/repository"
	clientdomain "github.com/atomoco/atomo/internal/client/domain"
	clientrepo "github.com/atomoco/atomo/internal/client/repository"
	"github.com/atomoco/atomo/internal/clock"
	entitlementdomain "github.com/atomoco/atomo/internal/entitlement/domain"
	entitlementservice "github.com/atomoco/atomo/internal/entitlement/service"
	"github.com/atomoco/atomo/internal/observability"
	targetdomain "github.com/atomoco/atomo/internal/paymenttarget/domain"
	targetrepo "github.com/atomoco/atomo/internal/paymenttarget/repository"
	"github.com/atomoco/atomo/internal/providers/email"
	"github.com/atomoco/atomo/internal/providers/identity"
	"github.com/atomoco/atomo/internal/providers/pdf"
	"github.com/atomoco/atomo/internal/sessionctx"
	"github.com/atomoco/atomo/internal/tax"
	"github.com/bwmarrin/snowflake"
)

// promauto registers against the default registerer, so the metrics
// handle is shared across every test in the binary.
var testMetrics = observability.New()

type pdfMock struct {
	mock.Mock
}

func (m *pdfMock) GenerateDocument(ctx context.Context, data pdf.DocumentData) ([]byte, error) {
	args := m.Called(ctx, data)
	var b []byte
	if args.Get(0) != nil {
		b = args.Get(0).([]byte)
	}
	return b, args.Error(1)
}

type emailMock struct {
	mock.Mock
}

func (m *emailMock) Send(ctx context.Context, to []string, subject, htmlBody string, attachments ...email.Attachment) error {
	args := m.Called(ctx, to, subject, htmlBody, attachments)
	return args.Error(0)
}

type fixture struct {
	db       *gorm.DB
	accounts accountdomain.Repository
	clients  clientdomain.Repository
	targets  targetdomain.Repository
	pdf      *pdfMock
	email    *emailMock
	clock    *clock.FakeClock
	genID    *snowflake.Node
	svc      domain.Service

	account *accountdomain.Account
	client  *clientdomain.Client
	target  *targetdomain.PaymentTarget
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureAt(t, ":memory:")
}

// newSharedFixture opens a file-backed database so goroutines contend
// the way they would against a server database. IMMEDIATE transactions
// with a busy timeout make concurrent writers queue instead of failing
// fast.
func newSharedFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_txlock=immediate",
		filepath.Join(t.TempDir(), "billing.db"))
	return newFixtureAt(t, dsn)
}

func newFixtureAt(t *testing.T, dsn string) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&accountdomain.Account{},
		&clientdomain.Client{},
		&targetdomain.PaymentTarget{},
		&domain.Document{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	accounts := accountrepo.NewRepository(db)
	clients := clientrepo.NewRepository(db)
	targets := targetrepo.NewRepository(db)

	entitlement := entitlementservice.NewService(entitlementservice.ServiceParam{
		DB:       db,
		Accounts: accounts,
		Identity: &identity.LocalProvider{},
		Clock:    fc,
		Log:      log,
	})

	pdfProv := &pdfMock{}
	emailProv := &emailMock{}

	f := &fixture{
		db:       db,
		accounts: accounts,
		clients:  clients,
		targets:  targets,
		pdf:      pdfProv,
		email:    emailProv,
		clock:    fc,
		genID:    node,
	}

	f.svc = NewService(ServiceParam{
		DB:          db,
		Repo:        billingrepo.NewRepository(db),
		Accounts:    accounts,
		Clients:     clients,
		Targets:     targets,
		Entitlement: entitlement,
		PDF:         pdfProv,
		Email:       emailProv,
		Metrics:     testMetrics,
		Clock:       fc,
		GenID:       node,
		Log:         log,
	})

	ctx := context.Background()

	f.account = &accountdomain.Account{
		ID:           node.Generate(),
		Handle:       "laura@example.com",
		PasswordHash: "x",
		DisplayName:  "Laura Gómez",
		TaxID:        "1020304050",
		BrandColor:   accountdomain.DefaultBrandColor,
		ReferralCode: "LAUR001",
		Credits:      entitlementdomain.InitialCredits,
	}
	require.NoError(t, accounts.Insert(ctx, f.account))

	f.client = &clientdomain.Client{
		ID:        node.Generate(),
		AccountID: f.account.ID,
		Name:      "Constructora Andina SAS",
		TaxID:     "900123456",
		Email:     "pagos@andina.co",
	}
	require.NoError(t, clients.Insert(ctx, f.client))

	f.target = &targetdomain.PaymentTarget{
		ID:            node.Generate(),
		AccountID:     f.account.ID,
		Bank:          "Bancolombia",
		AccountNumber: "12345678901",
		Kind:          targetdomain.KindSavings,
	}
	require.NoError(t, targets.Insert(ctx, f.target))

	return f
}

func (f *fixture) ctx() context.Context {
	return sessionctx.WithAccountID(context.Background(), f.account.ID)
}

func (f *fixture) issueRequest() domain.IssueRequest {
	category := tax.CategoryFeesDeclarant
	return domain.IssueRequest{
		ClientID:        f.client.ID.String(),
		Description:     "Interventoría de obra, marzo",
		Gross:           decimal.NewFromInt(1_000_000),
		City:            "Medellín",
		Source:          &category,
		PaymentTargetID: f.target.ID.String(),
	}
}

func (f *fixture) reloadAccount(t *testing.T) *accountdomain.Account {
	t.Helper()
	account, err := f.accounts.FindByID(context.Background(), f.account.ID)
	require.NoError(t, err)
	require.NotNil(t, account)
	return account
}

func TestIssueEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.pdf.On("GenerateDocument", mock.Anything, mock.Anything).Return([]byte("%PDF-fake"), nil)

	result, err := f.svc.Issue(f.ctx(), f.issueRequest())
	require.NoError(t, err)

	doc := result.Document
	assert.Equal(t, int64(1), doc.Sequence)
	assert.Equal(t, "Constructora Andina SAS", doc.ClientName)
	assert.Equal(t, "900123456", doc.ClientTaxID)
	assert.Equal(t, domain.StatusPending, doc.Status)
	assert.True(t, doc.GrossAmount.Equal(decimal.NewFromInt(1_000_000)))
	assert.True(t, doc.WithheldSource.Equal(decimal.NewFromInt(110_000)))
	assert.True(t, doc.WithheldLocal.IsZero())
	assert.True(t, doc.NetAmount.Equal(decimal.NewFromInt(890_000)))

	assert.Equal(t, "Cuenta_0001.pdf", result.Filename)
	assert.Equal(t, []byte("%PDF-fake"), result.PDF)
	assert.False(t, result.NegativeNet)

	// One credit spent.
	assert.Equal(t, int64(entitlementdomain.InitialCredits-1), f.reloadAccount(t).Credits)
}

func TestIssueSequencesAreGapFree(t *testing.T) {
	f := newFixture(t)
	f.pdf.On("GenerateDocument", mock.Anything, mock.Anything).Return([]byte("pdf"), nil)

	for want := int64(1); want <= 5; want++ {
		result, err := f.svc.Issue(f.ctx(), f.issueRequest())
		require.NoError(t, err)
		assert.Equal(t, want, result.Document.Sequence)
	}
	assert.Equal(t, int64(0), f.reloadAccount(t).Credits)
}

func TestIssueSequencesPerAccount(t *testing.T) {
	f := newFixture(t)
	f.pdf.On("GenerateDocument", mock.Anything, mock.Anything).Return([]byte("pdf"), nil)

	ctx := context.Background()
	other := &accountdomain.Account{
		ID:           f.genID.Generate(),
		Handle:       "mario@example.com",
		PasswordHash: "x",
		DisplayName:  "Mario Ruiz",
		BrandColor:   accountdomain.DefaultBrandColor,
		ReferralCode: "MARI002",
		Credits:      3,
	}
	require.NoError(t, f.accounts.Insert(ctx, other))
	otherClient := &clientdomain.Client{
		ID:        f.genID.Generate(),
		AccountID: other.ID,
		Name:      "Otro Cliente",
		TaxID:     "800999888",
	}
	require.NoError(t, f.clients.Insert(ctx, otherClient))
	otherTarget := &targetdomain.PaymentTarget{
		ID:            f.genID.Generate(),
		AccountID:     other.ID,
		Bank:          "Davivienda",
		AccountNumber: "9876543210",
		Kind:          targetdomain.KindChecking,
	}
	require.NoError(t, f.targets.Insert(ctx, otherTarget))

	first, err := f.svc.Issue(f.ctx(), f.issueRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.Document.Sequence)

	otherCtx := sessionctx.WithAccountID(ctx, other.ID)
	req := domain.IssueRequest{
		ClientID:        otherClient.ID.String(),
		Description:     "Asesoría",
		Gross:           decimal.NewFromInt(500_000),
		City:            "Bogotá",
		PaymentTargetID: otherTarget.ID.String(),
	}
	otherResult, err := f.svc.Issue(otherCtx, req)
	require.NoError(t, err)
	// Each account numbers from its own sequence.
	assert.Equal(t, int64(1), otherResult.Document.Sequence)
}

func TestIssueLastCreditOnlyOnce(t *testing.T) {
	f := newFixture(t)
	f.pdf.On("GenerateDocument", mock.Anything, mock.Anything).Return([]byte("pdf"), nil)

	f.account.Credits = 1
	require.NoError(t, f.accounts.Update(context.Background(), f.account))

	_, err := f.svc.Issue(f.ctx(), f.issueRequest())
	require.NoError(t, err)

	_, err = f.svc.Issue(f.ctx(), f.issueRequest())
	var denied *entitlementdomain.DeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, entitlementdomain.ReasonNeedsVerification, denied.Reason)

	// The denial left the balance and the document count alone.
	assert.Equal(t, int64(0), f.reloadAccount(t).Credits)
	docs, err := f.svc.List(f.ctx())
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestIssueConcurrentSequencesDistinct(t *testing.T) {
	f := newSharedFixture(t)
	f.pdf.On("GenerateDocument", mock.Anything, mock.Anything).Return([]byte("pdf"), nil)

	const n = 5 // one issuance per seeded credit
	sequences := make(chan int64, n)
	failures := make(chan error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.svc.Issue(f.ctx(), f.issueRequest())
			if err != nil {
				failures <- err
				return
			}
			sequences <- result.Document.Sequence
		}()
	}
	wg.Wait()
	close(sequences)
	close(failures)

	for err := range failures {
		t.Fatalf("concurrent issue failed: %v", err)
	}

	seen := make(map[int64]bool, n)
	for seq := range sequences {
		assert.False(t, seen[seq], "sequence %d assigned twice", seq)
		seen[seq] = true
	}
	for want := int64(1); want <= n; want++ {
		assert.True(t, seen[want], "sequence %d missing", want)
	}
	assert.Equal(t, int64(0), f.reloadAccount(t).Credits)
}

func TestIssueConcurrentLastCredit(t *testing.T) {
	f := newSharedFixture(t)
	f.pdf.On("GenerateDocument", mock.Anything, mock.Anything).Return([]byte("pdf"), nil)

	// Verified with a single credit: the losing request must be told to
	// subscribe, not to verify.
	f.account.Credits = 1
	f.account.Verified = true
	require.NoError(t, f.accounts.Update(context.Background(), f.account))

	outcomes := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Issue(f.ctx(), f.issueRequest())
			outcomes <- err
		}()
	}
	wg.Wait()
	close(outcomes)

	var issued, deniedCount int
	for err := range outcomes {
		if err == nil {
			issued++
			continue
		}
		var denied *entitlementdomain.DeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, entitlementdomain.ReasonNeedsSubscription, denied.Reason)
		deniedCount++
	}
	assert.Equal(t, 1, issued)
	assert.Equal(t, 1, deniedCount)

	docs, err := f.svc.List(f.ctx())
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Equal(t, int64(0), f.reloadAccount(t).Credits)
}

func TestIssueSubscribedKeepsCredits(t *testing.T) {
	f := newFixture(t)
	f.pdf.On("GenerateDocument", mock.Anything, mock.Anything).Return([]byte("pdf"), nil)

	until := f.clock.Now().Add(30 * 24 * time.Hour)
	f.account.SubscriptionUntil = &until
	require.NoError(t, f.accounts.Update(context.Background(), f.account))

	_, err := f.svc.Issue(f.ctx(), f.issueRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(entitlementdomain.InitialCredits), f.reloadAccount(t).Credits)
}

func TestIssueRenderFailureKeepsDocument(t *testing.T) {
	f := newFixture(t)
	f.pdf.On("GenerateDocument", mock.Anything, mock.Anything).Return(nil, errors.New("font missing"))

	result, err := f.svc.Issue(f.ctx(), f.issueRequest())
	require.NoError(t, err)

	// The issuance is durable even though rendering failed.
	assert.Nil(t, result.PDF)
	assert.Equal(t, int64(1), result.Document.Sequence)

	docs, err := f.svc.List(f.ctx())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, int64(entitlementdomain.InitialCredits-1), f.reloadAccount(t).Credits)
}

func TestIssueNegativeNetFlagged(t *testing.T) {
	f := newFixture(t)
	f.pdf.On("GenerateDocument", mock.Anything, mock.Anything).Return([]byte("pdf"), nil)

	req := f.issueRequest()
	req.Gross = decimal.NewFromInt(100)
	req.Local = &tax.LocalSelection{PerMille: decimal.NewFromInt(950), City: "Cali"}

	result, err := f.svc.Issue(f.ctx(), req)
	require.NoError(t, err)

	assert.True(t, result.NegativeNet)
	assert.True(t, result.Document.NetAmount.IsNegative())
}

func TestIssueValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		mutate  func(*domain.IssueRequest)
		wantErr error
	}{
		{"zero gross", func(r *domain.IssueRequest) { r.Gross = decimal.Zero }, domain.ErrInvalidGross},
		{"negative gross", func(r *domain.IssueRequest) { r.Gross = decimal.NewFromInt(-10) }, domain.ErrInvalidGross},
		{"blank description", func(r *domain.IssueRequest) { r.Description = "  " }, domain.ErrInvalidDescription},
		{"blank city", func(r *domain.IssueRequest) { r.City = "" }, domain.ErrInvalidCity},
		{"unknown client", func(r *domain.IssueRequest) { r.ClientID = "999999999" }, domain.ErrClientNotFound},
		{"malformed client id", func(r *domain.IssueRequest) { r.ClientID = "abc" }, domain.ErrClientNotFound},
		{"unknown target", func(r *domain.IssueRequest) { r.PaymentTargetID = "999999999" }, domain.ErrTargetNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := f.issueRequest()
			tc.mutate(&req)
			_, err := f.svc.Issue(f.ctx(), req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestIssueForeignTargetRejected(t *testing.T) {
	f := newFixture(t)

	foreign := &targetdomain.PaymentTarget{
		ID:            f.genID.Generate(),
		AccountID:     f.genID.Generate(),
		Bank:          "Nequi",
		AccountNumber: "3001234567",
		Kind:          targetdomain.KindSavings,
	}
	require.NoError(t, f.targets.Insert(context.Background(), foreign))

	req := f.issueRequest()
	req.PaymentTargetID = foreign.ID.String()

	_, err := f.svc.Issue(f.ctx(), req)
	assert.ErrorIs(t, err, domain.ErrTargetNotFound)
}

func TestIssueRequiresSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Issue(context.Background(), f.issueRequest())
	assert.ErrorIs(t, err, accountdomain.ErrNotFound)
}

func TestRenderArchivedTarget(t *testing.T) {
	f := newFixture(t)
	f.pdf.On("GenerateDocument", mock.Anything, mock.Anything).Return([]byte("pdf"), nil)

	result, err := f.svc.Issue(f.ctx(), f.issueRequest())
	require.NoError(t, err)

	require.NoError(t, f.targets.Archive(context.Background(), f.account.ID, f.target.ID))

	// Historic documents keep rendering their archived target.
	pdfBytes, filename, err := f.svc.Render(f.ctx(), result.Document.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf"), pdfBytes)
	assert.Equal(t, "Cuenta_0001.pdf", filename)
}

func TestSendAttachesRenderedDocument(t *testing.T) {
	f := newFixture(t)
	f.pdf.On("GenerateDocument", mock.Anything, mock.Anything).Return([]byte("pdf"), nil)

	result, err := f.svc.Issue(f.ctx(), f.issueRequest())
	require.NoError(t, err)

	f.email.On("Send", mock.Anything,
		[]string{"pagos@andina.co"},
		"Cuenta de Cobro #0001",
		"Hola, adjunto soporte de pago.",
		mock.MatchedBy(func(atts []email.Attachment) bool {
			return len(atts) == 1 &&
				atts[0].Filename == "Cuenta_0001.pdf" &&
				atts[0].ContentType == "application/pdf"
		}),
	).Return(nil)

	delivered, err := f.svc.Send(f.ctx(), result.Document.ID.String())
	require.NoError(t, err)
	assert.True(t, delivered)
	f.email.AssertExpectations(t)
}

func TestSendTransportFailureIsNotAnError(t *testing.T) {
	f := newFixture(t)
	f.pdf.On("GenerateDocument", mock.Anything, mock.Anything).Return([]byte("pdf"), nil)

	result, err := f.svc.Issue(f.ctx(), f.issueRequest())
	require.NoError(t, err)

	f.email.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp refused"))

	delivered, err := f.svc.Send(f.ctx(), result.Document.ID.String())
	require.NoError(t, err)
	assert.False(t, delivered)
}

func TestSendWithoutClientEmail(t *testing.T) {
	f := newFixture(t)
	f.pdf.On("GenerateDocument", mock.Anything, mock.Anything).Return([]byte("pdf"), nil)

	ctx := context.Background()
	mute := &clientdomain.Client{
		ID:        f.genID.Generate(),
		AccountID: f.account.ID,
		Name:      "Sin Correo Ltda",
		TaxID:     "811222333",
	}
	require.NoError(t, f.clients.Insert(ctx, mute))

	req := f.issueRequest()
	req.ClientID = mute.ID.String()
	result, err := f.svc.Issue(f.ctx(), req)
	require.NoError(t, err)

	_, err = f.svc.Send(f.ctx(), result.Document.ID.String())
	assert.ErrorIs(t, err, domain.ErrNoRecipient)
}

func TestGetByIDScopedToAccount(t *testing.T) {
	f := newFixture(t)
	f.pdf.On("GenerateDocument", mock.Anything, mock.Anything).Return([]byte("pdf"), nil)

	result, err := f.svc.Issue(f.ctx(), f.issueRequest())
	require.NoError(t, err)

	strangerCtx := sessionctx.WithAccountID(context.Background(), f.genID.Generate())
	_, err = f.svc.GetByID(strangerCtx, result.Document.ID.String())
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

	_, err = f.svc.GetByID(f.ctx(), "not-a-snowflake")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestUpdateStatusAndSummary(t *testing.T) {
	f := newFixture(t)
	f.pdf.On("GenerateDocument", mock.Anything, mock.Anything).Return([]byte("pdf"), nil)

	first, err := f.svc.Issue(f.ctx(), f.issueRequest())
	require.NoError(t, err)
	second, err := f.svc.Issue(f.ctx(), f.issueRequest())
	require.NoError(t, err)
	third, err := f.svc.Issue(f.ctx(), f.issueRequest())
	require.NoError(t, err)

	require.NoError(t, f.svc.UpdateStatus(f.ctx(), first.Document.ID.String(), domain.StatusPaid))
	require.NoError(t, f.svc.UpdateStatus(f.ctx(), third.Document.ID.String(), domain.StatusVoided))

	err = f.svc.UpdateStatus(f.ctx(), second.Document.ID.String(), domain.DocumentStatus("shredded"))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	summary, err := f.svc.Summary(f.ctx())
	require.NoError(t, err)

	// Voided documents leave every bucket.
	net := decimal.NewFromInt(890_000)
	assert.Equal(t, int64(2), summary.Count)
	assert.True(t, summary.Issued.Equal(net.Mul(decimal.NewFromInt(2))), "issued %s", summary.Issued)
	assert.True(t, summary.Collected.Equal(net), "collected %s", summary.Collected)
	assert.True(t, summary.Outstanding.Equal(net), "outstanding %s", summary.Outstanding)
}
