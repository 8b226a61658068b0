package domain

import (
	"context"

	"github.com/atomoco/atomo/internal/tax"
	"github.com/shopspring/decimal"
)

// IssueRequest describes one issuance: who is billed, for what, and
// which withholdings apply. AccountID comes from the session context.
type IssueRequest struct {
	ClientID        string
	Description     string
	Gross           decimal.Decimal
	City            string
	Source          *tax.SourceCategory
	Local           *tax.LocalSelection
	PaymentTargetID string
}

type IssueResult struct {
	Document    Document
	PDF         []byte
	Filename    string
	NegativeNet bool
}

type Service interface {
	// Issue runs the full issuance: entitlement authorization, tax
	// computation, sequence assignment and document insert in one
	// transaction, then rendering once the record is durable.
	Issue(ctx context.Context, req IssueRequest) (*IssueResult, error)

	List(ctx context.Context) ([]Document, error)
	GetByID(ctx context.Context, id string) (*Document, error)

	// Render re-renders a persisted document from its snapshots.
	Render(ctx context.Context, id string) ([]byte, string, error)

	// Send renders the document and hands it to the notification
	// transport addressed to the client's email. The boolean is the
	// transport's delivery verdict; no retries.
	Send(ctx context.Context, id string) (bool, error)

	UpdateStatus(ctx context.Context, id string, status DocumentStatus) error
	Summary(ctx context.Context) (Summary, error)
}
