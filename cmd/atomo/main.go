package main

import (
	"github.com/atomoco/atomo/internal/account"
	"github.com/atomoco/atomo/internal/auth"
	"github.com/atomoco/atomo/internal/billing"
	"github.com/atomoco/atomo/internal/client"
	"github.com/atomoco/atomo/internal/clock"
	"github.com/atomoco/atomo/internal/config"
	"github.com/atomoco/atomo/internal/entitlement"
	"github.com/atomoco/atomo/internal/logger"
	"github.com/atomoco/atomo/internal/migration"
	"github.com/atomoco/atomo/internal/observability"
	"github.com/atomoco/atomo/internal/paymenttarget"
	"github.com/atomoco/atomo/internal/providers"
	"github.com/atomoco/atomo/internal/ratelimit"
	"github.com/atomoco/atomo/internal/referral"
	"github.com/atomoco/atomo/internal/scheduler"
	"github.com/atomoco/atomo/internal/seed"
	"github.com/atomoco/atomo/internal/server"
	"github.com/atomoco/atomo/internal/signup"
	"github.com/atomoco/atomo/pkg/db"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		observability.Module,
		migration.Module,
		fx.Invoke(seedDemo),

		// Providers
		providers.Module,
		ratelimit.Module,

		// Functional domains
		account.Module,
		auth.Module,
		client.Module,
		paymenttarget.Module,
		entitlement.Module,
		referral.Module,
		billing.Module,
		signup.Module,

		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

func seedDemo(cfg config.Config, conn *gorm.DB, genID *snowflake.Node) error {
	if !cfg.SeedDemoAccount {
		return nil
	}
	return seed.EnsureDemoAccount(conn, genID)
}
