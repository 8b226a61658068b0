package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type TargetKind string

const (
	KindSavings  TargetKind = "savings"
	KindChecking TargetKind = "checking"
)

func (k TargetKind) Valid() bool {
	return k == KindSavings || k == KindChecking
}

// PaymentTarget is a bank destination owned by one account. Documents
// reference targets by id as a point-in-time snapshot; once referenced a
// target is never edited, and "deletion" only archives it so historic
// documents keep rendering their original payment instructions.
type PaymentTarget struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	AccountID     snowflake.ID `gorm:"not null;index" json:"account_id"`
	Bank          string       `gorm:"not null" json:"bank"`
	AccountNumber string       `gorm:"column:account_number;not null" json:"account_number"`
	Kind          TargetKind   `gorm:"type:text;not null" json:"kind"`
	Alias         *string      `json:"alias,omitempty"`
	QR            []byte       `gorm:"column:qr" json:"-"`
	ArchivedAt    *time.Time   `gorm:"column:archived_at" json:"archived_at,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (PaymentTarget) TableName() string { return "payment_targets" }
