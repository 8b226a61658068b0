// Package pdf renders the payment-support document as a single fixed
// layout A4 page.
package pdf

import (
	"context"

	"github.com/shopspring/decimal"
)

// DocumentData is everything the renderer needs, snapshotted by the
// caller. Amounts arrive unrounded; the renderer formats them to whole
// currency units at draw time.
type DocumentData struct {
	IssuerName   string
	IssuerTaxID  string
	Slogan       string
	Address      string
	Phone        string
	ContactEmail string
	BrandColor   string
	Logo         []byte
	Signature    []byte

	Number    string
	IssueDate string
	City      string

	ClientName  string
	ClientTaxID string
	Description string

	Gross          decimal.Decimal
	WithheldSource decimal.Decimal
	WithheldLocal  decimal.Decimal
	Net            decimal.Decimal

	Bank          string
	AccountKind   string
	AccountNumber string
	Alias         string
	QR            []byte
}

type Provider interface {
	GenerateDocument(ctx context.Context, data DocumentData) ([]byte, error)
}
