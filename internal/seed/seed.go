// Package seed bootstraps a demo account for local development so the
// app is usable right after first start.
package seed

import (
	"context"
	"errors"

	accountdomain "github.com/atomoco/atomo/internal/account/domain"
	"github.com/atomoco/atomo/internal/auth/password"
	clientdomain "github.com/atomoco/atomo/internal/client/domain"
	entitlementdomain "github.com/atomoco/atomo/internal/entitlement/domain"
	targetdomain "github.com/atomoco/atomo/internal/paymenttarget/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const (
	demoHandle   = "demo@atomo.local"
	demoPassword = "demodemo"
	demoName     = "Estudio Demo"
)

// EnsureDemoAccount creates the demo account with one client and one
// payment target. Idempotent: an existing handle means nothing to do.
func EnsureDemoAccount(db *gorm.DB, genID *snowflake.Node) error {
	if db == nil || genID == nil {
		return errors.New("seed requires a database handle and id generator")
	}
	ctx := context.Background()

	var count int64
	if err := db.WithContext(ctx).Model(&accountdomain.Account{}).
		Where("handle = ?", demoHandle).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := password.Hash(demoPassword)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		account := &accountdomain.Account{
			ID:           genID.Generate(),
			Handle:       demoHandle,
			PasswordHash: hash,
			DisplayName:  demoName,
			TaxID:        "1020304050",
			Phone:        "3001234567",
			Address:      "Cra 43A # 1-50, Medellín",
			Slogan:       "Diseño e interventoría",
			BrandColor:   accountdomain.DefaultBrandColor,
			ReferralCode: "DEMO001",
			Credits:      entitlementdomain.InitialCredits,
		}
		if err := tx.Create(account).Error; err != nil {
			return err
		}

		client := &clientdomain.Client{
			ID:        genID.Generate(),
			AccountID: account.ID,
			Name:      "Constructora Andina SAS",
			TaxID:     "900123456",
			City:      "Medellín",
			Email:     "pagos@andina.co",
		}
		if err := tx.Create(client).Error; err != nil {
			return err
		}

		target := &targetdomain.PaymentTarget{
			ID:            genID.Generate(),
			AccountID:     account.ID,
			Bank:          "Bancolombia",
			AccountNumber: "12345678901",
			Kind:          targetdomain.KindSavings,
		}
		return tx.Create(target).Error
	})
}
