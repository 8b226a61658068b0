// Package domain holds the Document model and the billing service
// contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type DocumentStatus string

const (
	StatusPending DocumentStatus = "pending"
	StatusPaid    DocumentStatus = "paid"
	StatusVoided  DocumentStatus = "voided"
)

func (s DocumentStatus) Valid() bool {
	return s == StatusPending || s == StatusPaid || s == StatusVoided
}

// Document is immutable once created, except for its lifecycle status,
// which the account owner updates during manual reconciliation. Client
// identity and payment instructions are point-in-time snapshots so
// historic documents render identically regardless of later edits.
type Document struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	AccountID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_documents_account_seq,priority:1" json:"account_id"`
	Sequence  int64        `gorm:"not null;uniqueIndex:ux_documents_account_seq,priority:2" json:"sequence"`
	IssueDate time.Time    `gorm:"column:issue_date;not null" json:"issue_date"`

	ClientName  string `gorm:"column:client_name;not null" json:"client_name"`
	ClientTaxID string `gorm:"column:client_tax_id;not null" json:"client_tax_id"`
	Description string `gorm:"not null" json:"description"`

	GrossAmount    decimal.Decimal `gorm:"column:gross_amount;type:numeric(18,4);not null" json:"gross_amount"`
	WithheldSource decimal.Decimal `gorm:"column:withheld_source;type:numeric(18,4);not null" json:"withheld_source"`
	WithheldLocal  decimal.Decimal `gorm:"column:withheld_local;type:numeric(18,4);not null" json:"withheld_local"`
	NetAmount      decimal.Decimal `gorm:"column:net_amount;type:numeric(18,4);not null" json:"net_amount"`

	City         string `gorm:"not null" json:"city"`
	LocalTaxCity string `gorm:"column:local_tax_city" json:"local_tax_city,omitempty"`

	PaymentTargetID snowflake.ID   `gorm:"column:payment_target_id;not null" json:"payment_target_id"`
	Status          DocumentStatus `gorm:"type:text;not null" json:"status"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Document) TableName() string { return "documents" }

// Summary aggregates net amounts for the dashboard. Voided documents are
// excluded from every bucket.
type Summary struct {
	Issued      decimal.Decimal `json:"issued"`
	Collected   decimal.Decimal `json:"collected"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Count       int64           `json:"count"`
}
