// Package e2e drives the full HTTP surface end to end: signup with OTP,
// login, counterparty and payment target setup, then document issuance
// with a real PDF render.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
	accountrepo "github.com/atomoco/atomo/internal/account/repository"
	accountservice "github.com/atomoco/atomo/internal/account/service"
	authdomain "github.com/atomoco/atomo/internal/auth/domain"
	authrepo "github.com/atomoco/atomo/internal/auth/repository"
	authservice "github.com/atomoco/atomo/internal/auth/service"
	"github.com/atomoco/atomo/internal/auth/session"
	billingdomain "github.com/atomoco/atomo/internal/billing/domain"
	billingrepo "github.com/atomoco/atomo/internal/billing/repository"
	billingservice "github.com/atomoco/atomo/internal/billing/service"
	clientdomain "github.com/atomoco/atomo/internal/client/domain"
	clientrepo "github.com/atomoco/atomo/internal/client/repository"
	clientservice "github.com/atomoco/atomo/internal/client/service"
	"github.com/atomoco/atomo/internal/clock"
	"github.com/atomoco/atomo/internal/config"
	entitlementservice "github.com/atomoco/atomo/internal/entitlement/service"
	"github.com/atomoco/atomo/internal/observability"
	targetdomain "github.com/atomoco/atomo/internal/paymenttarget/domain"
	targetrepo "github.com/atomoco/atomo/internal/paymenttarget/repository"
	targetservice "github.com/atomoco/atomo/internal/paymenttarget/service"
	"github.com/atomoco/atomo/internal/providers/email"
	"github.com/atomoco/atomo/internal/providers/identity"
	"github.com/atomoco/atomo/internal/providers/pdf"
	referralservice "github.com/atomoco/atomo/internal/referral/service"
	"github.com/atomoco/atomo/internal/server"
	signupdomain "github.com/atomoco/atomo/internal/signup/domain"
	signuprepo "github.com/atomoco/atomo/internal/signup/repository"
	signupservice "github.com/atomoco/atomo/internal/signup/service"
	"github.com/bwmarrin/snowflake"
)

var testMetrics = observability.New()

type mailbox struct {
	subjects []string
}

func (m *mailbox) Send(ctx context.Context, to []string, subject, htmlBody string, attachments ...email.Attachment) error {
	m.subjects = append(m.subjects, subject)
	return nil
}

var otpRe = regexp.MustCompile(`\d{6}`)

type app struct {
	engine *gin.Engine
	mail   *mailbox
	cookie string
}

func newApp(t *testing.T) *app {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&accountdomain.Account{},
		&clientdomain.Client{},
		&targetdomain.PaymentTarget{},
		&billingdomain.Document{},
		&authdomain.Session{},
		&signupdomain.SignupCode{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	cfg := config.Config{
		Environment: "development",
		BaseURL:     "http://localhost:8080",
	}
	fc := clock.NewFakeClock(time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC))
	mail := &mailbox{}

	accounts := accountrepo.NewRepository(db)
	clients := clientrepo.NewRepository(db)
	targets := targetrepo.NewRepository(db)

	entitlementSvc := entitlementservice.NewService(entitlementservice.ServiceParam{
		DB: db, Accounts: accounts, Identity: &identity.LocalProvider{}, Clock: fc, Log: log,
	})
	referralSvc := referralservice.NewService(referralservice.ServiceParam{
		Cfg: cfg, Accounts: accounts, Log: log,
	})
	billingSvc := billingservice.NewService(billingservice.ServiceParam{
		DB:          db,
		Repo:        billingrepo.NewRepository(db),
		Accounts:    accounts,
		Clients:     clients,
		Targets:     targets,
		Entitlement: entitlementSvc,
		PDF:         pdf.New(),
		Email:       mail,
		Metrics:     testMetrics,
		Clock:       fc,
		GenID:       node,
		Log:         log,
	})
	signupSvc := signupservice.NewService(signupservice.ServiceParam{
		Repo:      signuprepo.NewRepository(db),
		Accounts:  accounts,
		Referrals: referralSvc,
		Email:     mail,
		Metrics:   testMetrics,
		Clock:     fc,
		GenID:     node,
		Log:       log,
	})

	engine := server.NewEngine(cfg)
	server.NewServer(server.ServerParams{
		Gin:      engine,
		Cfg:      cfg,
		Log:      log,
		Sessions: session.NewManager(cfg),
		Authsvc: authservice.NewService(authservice.ServiceParam{
			Repo: authrepo.NewRepository(db), Accounts: accounts, Clock: fc, Log: log,
		}),
		Signupsvc:      signupSvc,
		Accountsvc:     accountservice.NewService(accountservice.ServiceParam{Repo: accounts, Log: log}),
		Clientsvc:      clientservice.NewService(clientservice.ServiceParam{Repo: clients, GenID: node, Log: log}),
		Targetsvc:      targetservice.NewService(targetservice.ServiceParam{Repo: targets, GenID: node, Log: log}),
		Billingsvc:     billingSvc,
		Entitlementsvc: entitlementSvc,
		Referralsvc:    referralSvc,
		Metrics:        testMetrics,
	})

	return &app{engine: engine, mail: mail}
}

func (a *app) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.cookie != "" {
		req.Header.Set("Cookie", a.cookie)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

func (a *app) doForm(t *testing.T, method, path string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if a.cookie != "" {
		req.Header.Set("Cookie", a.cookie)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func (a *app) signupAndLogin(t *testing.T) {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/signup", map[string]string{
		"name":     "Laura Gómez",
		"handle":   "laura@example.com",
		"password": "secreto123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.NotEmpty(t, a.mail.subjects)
	otp := otpRe.FindString(a.mail.subjects[len(a.mail.subjects)-1])
	require.Len(t, otp, 6)

	rec = a.do(t, http.MethodPost, "/signup/verify", map[string]string{
		"handle": "laura@example.com",
		"code":   otp,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/auth/login", map[string]string{
		"handle":   "laura@example.com",
		"password": "secreto123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	a.cookie = fmt.Sprintf("%s=%s", cookies[0].Name, cookies[0].Value)
}

func TestFullIssuanceFlow(t *testing.T) {
	a := newApp(t)
	a.signupAndLogin(t)

	var me accountdomain.Account
	decodeJSON(t, a.do(t, http.MethodGet, "/auth/me", nil), &me)
	assert.Equal(t, "laura@example.com", me.Handle)
	assert.Equal(t, int64(5), me.Credits)

	var client clientdomain.Client
	rec := a.do(t, http.MethodPost, "/api/clients", map[string]string{
		"name":   "Constructora Andina SAS",
		"tax_id": "900123456",
		"city":   "Medellín",
		"email":  "pagos@andina.co",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeJSON(t, rec, &client)

	var target targetdomain.PaymentTarget
	rec = a.doForm(t, http.MethodPost, "/api/payment-targets", map[string]string{
		"bank":           "Bancolombia",
		"account_number": "12345678901",
		"kind":           "savings",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeJSON(t, rec, &target)

	rec = a.do(t, http.MethodPost, "/api/documents", map[string]any{
		"client_id":         client.ID.String(),
		"description":       "Interventoría de obra, junio",
		"gross":             "1000000",
		"city":              "Medellín",
		"source_category":   "fees_declarant",
		"payment_target_id": target.ID.String(),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var issued struct {
		Document billingdomain.Document `json:"document"`
		Filename string                 `json:"filename"`
	}
	decodeJSON(t, rec, &issued)
	assert.Equal(t, int64(1), issued.Document.Sequence)
	assert.Equal(t, "Cuenta_0001.pdf", issued.Filename)
	assert.Equal(t, "890000", issued.Document.NetAmount.String())

	// The debit shows on the account.
	decodeJSON(t, a.do(t, http.MethodGet, "/auth/me", nil), &me)
	assert.Equal(t, int64(4), me.Credits)

	// Re-render from the persisted snapshots yields an actual PDF.
	rec = a.do(t, http.MethodGet, "/api/documents/"+issued.Document.ID.String()+"/pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	var listing struct {
		Documents []billingdomain.Document `json:"documents"`
	}
	rec = a.do(t, http.MethodGet, "/api/documents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeJSON(t, rec, &listing)
	assert.Len(t, listing.Documents, 1)
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	a := newApp(t)

	rec := a.do(t, http.MethodGet, "/api/documents", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEntitlementDenialOverHTTP(t *testing.T) {
	a := newApp(t)
	a.signupAndLogin(t)

	var client clientdomain.Client
	decodeJSON(t, a.do(t, http.MethodPost, "/api/clients", map[string]string{
		"name": "Cliente", "tax_id": "811222333",
	}), &client)

	var target targetdomain.PaymentTarget
	decodeJSON(t, a.doForm(t, http.MethodPost, "/api/payment-targets", map[string]string{
		"bank": "Nequi", "account_number": "3001234567", "kind": "savings",
	}), &target)

	issue := func() *httptest.ResponseRecorder {
		return a.do(t, http.MethodPost, "/api/documents", map[string]any{
			"client_id":         client.ID.String(),
			"description":       "Asesoría",
			"gross":             "100000",
			"city":              "Bogotá",
			"payment_target_id": target.ID.String(),
		})
	}

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, issue().Code)
	}

	// The sixth issuance exhausts the signup credits.
	rec := issue()
	require.Equal(t, http.StatusForbidden, rec.Code)

	var payload struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	decodeJSON(t, rec, &payload)
	assert.Equal(t, "entitlement_denied", payload.Error.Type)
	assert.Equal(t, "needs_verification", payload.Error.Reason)
}
