package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// LockAccount takes a row lock on the issuing account for the span
	// of tx, on dialects that support SELECT ... FOR UPDATE. On others
	// the guarded credit update plus the unique sequence index carry
	// the race protection.
	LockAccount(ctx context.Context, tx *gorm.DB, accountID snowflake.ID) error

	// MaxSequence reads the highest assigned sequence number for the
	// account from the authoritative record set. Call inside the same
	// transaction that inserts the document.
	MaxSequence(ctx context.Context, tx *gorm.DB, accountID snowflake.ID) (int64, error)

	Insert(ctx context.Context, tx *gorm.DB, doc *Document) error
	FindByID(ctx context.Context, accountID, id snowflake.ID) (*Document, error)
	List(ctx context.Context, accountID snowflake.ID) ([]Document, error)
	UpdateStatus(ctx context.Context, accountID, id snowflake.ID, status DocumentStatus) error
	Summarize(ctx context.Context, accountID snowflake.ID) (Summary, error)
}
