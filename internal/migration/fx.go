package migration

import (
	accountdomain "github.com/atomoco/atomo/internal/account/domain"
	authdomain "github.com/atomoco/atomo/internal/auth/domain"
	billingdomain "github.com/atomoco/atomo/internal/billing/domain"
	clientdomain "github.com/atomoco/atomo/internal/client/domain"
	"github.com/atomoco/atomo/internal/config"
	targetdomain "github.com/atomoco/atomo/internal/paymenttarget/domain"
	signupdomain "github.com/atomoco/atomo/internal/signup/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// Non-postgres deployments (sqlite for local runs, mysql)
			// fall back to schema sync from the models.
			return conn.AutoMigrate(
				&accountdomain.Account{},
				&clientdomain.Client{},
				&targetdomain.PaymentTarget{},
				&billingdomain.Document{},
				&authdomain.Session{},
				&signupdomain.SignupCode{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
