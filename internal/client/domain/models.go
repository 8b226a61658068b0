package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Client is a counterparty of one issuing account. The (account, tax id)
// pair is unique; documents carry a snapshot of name and tax id, not a
// live reference.
type Client struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	AccountID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_clients_account_tax_id,priority:1" json:"account_id"`
	Name      string       `gorm:"not null" json:"name"`
	TaxID     string       `gorm:"column:tax_id;not null;uniqueIndex:ux_clients_account_tax_id,priority:2" json:"tax_id"`
	City      string       `json:"city"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Client) TableName() string { return "clients" }
