package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const DefaultBrandColor = "#2E86C1"

// Account is an issuing account: a freelancer or small business that
// emits payment-support documents. Credits, the verified flag and the
// subscription window feed the entitlement decision at issuance time.
type Account struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Handle       string       `gorm:"uniqueIndex;not null" json:"handle"`
	PasswordHash string       `gorm:"not null" json:"-"`
	DisplayName  string       `gorm:"not null" json:"display_name"`

	TaxID        string `gorm:"column:tax_id" json:"tax_id"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	ContactEmail string `gorm:"column:contact_email" json:"contact_email"`

	Slogan     string `json:"slogan"`
	BrandColor string `gorm:"column:brand_color;not null;default:'#2E86C1'" json:"brand_color"`
	Logo       []byte `gorm:"column:logo" json:"-"`
	Signature  []byte `gorm:"column:signature" json:"-"`

	ReferralCode string  `gorm:"column:referral_code;uniqueIndex;not null" json:"referral_code"`
	ReferredBy   *string `gorm:"column:referred_by" json:"referred_by,omitempty"`

	Credits           int64      `gorm:"not null;default:5" json:"credits"`
	SubscriptionUntil *time.Time `gorm:"column:subscription_until" json:"subscription_until,omitempty"`
	Verified          bool       `gorm:"not null;default:false" json:"verified"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Account) TableName() string { return "accounts" }

// Subscribed reports whether the account holds a non-expired subscription
// at the given instant.
func (a *Account) Subscribed(now time.Time) bool {
	if a.SubscriptionUntil == nil {
		return false
	}
	return !a.SubscriptionUntil.Before(truncateDay(now))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
