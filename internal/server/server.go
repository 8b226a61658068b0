package server

import (
	"context"
	"net/http"
	"time"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
	authdomain "github.com/atomoco/atomo/internal/auth/domain"
	"github.com/atomoco/atomo/internal/auth/session"
	billingdomain "github.com/atomoco/atomo/internal/billing/domain"
	clientdomain "github.com/atomoco/atomo/internal/client/domain"
	"github.com/atomoco/atomo/internal/config"
	entitlementdomain "github.com/atomoco/atomo/internal/entitlement/domain"
	"github.com/atomoco/atomo/internal/observability"
	targetdomain "github.com/atomoco/atomo/internal/paymenttarget/domain"
	"github.com/atomoco/atomo/internal/ratelimit"
	referraldomain "github.com/atomoco/atomo/internal/referral/domain"
	signupdomain "github.com/atomoco/atomo/internal/signup/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	log            *zap.Logger
	sessions       *session.Manager
	authsvc        authdomain.Service
	signupsvc      signupdomain.Service
	accountsvc     accountdomain.Service
	clientsvc      clientdomain.Service
	targetsvc      targetdomain.Service
	billingsvc     billingdomain.Service
	entitlementsvc entitlementdomain.Service
	referralsvc    referraldomain.Service
	metrics        *observability.Metrics
	limiter        *ratelimit.AuthLimiter
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Log            *zap.Logger
	Sessions       *session.Manager
	Authsvc        authdomain.Service
	Signupsvc      signupdomain.Service
	Accountsvc     accountdomain.Service
	Clientsvc      clientdomain.Service
	Targetsvc      targetdomain.Service
	Billingsvc     billingdomain.Service
	Entitlementsvc entitlementdomain.Service
	Referralsvc    referraldomain.Service
	Metrics        *observability.Metrics
	Limiter        *ratelimit.AuthLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("http.server"),
		sessions:       p.Sessions,
		authsvc:        p.Authsvc,
		signupsvc:      p.Signupsvc,
		accountsvc:     p.Accountsvc,
		clientsvc:      p.Clientsvc,
		targetsvc:      p.Targetsvc,
		billingsvc:     p.Billingsvc,
		entitlementsvc: p.Entitlementsvc,
		referralsvc:    p.Referralsvc,
		metrics:        p.Metrics,
		limiter:        p.Limiter,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerWebhookRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.RequireSession(), s.Me)

	s.engine.POST("/signup", s.BeginSignup)
	s.engine.POST("/signup/verify", s.CompleteSignup)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.RequireSession())

	api.GET("/account", s.GetAccount)
	api.PUT("/account/legal", s.UpdateAccountLegal)
	api.PUT("/account/branding", s.UpdateAccountBranding)

	api.GET("/clients", s.ListClients)
	api.POST("/clients", s.CreateClient)

	api.GET("/payment-targets", s.ListPaymentTargets)
	api.POST("/payment-targets", s.CreatePaymentTarget)
	api.DELETE("/payment-targets/:id", s.ArchivePaymentTarget)

	api.GET("/tax/categories", s.ListTaxCategories)

	api.POST("/documents", s.IssueDocument)
	api.GET("/documents", s.ListDocuments)
	api.GET("/documents/summary", s.DocumentSummary)
	api.GET("/documents/:id", s.GetDocument)
	api.GET("/documents/:id/pdf", s.DownloadDocument)
	api.POST("/documents/:id/send", s.SendDocument)
	api.PATCH("/documents/:id/status", s.UpdateDocumentStatus)

	api.POST("/verification", s.VerifyIdentity)
	api.POST("/subscription", s.ActivateSubscription)
	api.GET("/subscription/plans", s.ListPlans)

	api.GET("/referrals", s.ReferralOverview)
}

func (s *Server) registerWebhookRoutes() {
	s.engine.POST("/webhooks/payment", s.PaymentWebhook)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
