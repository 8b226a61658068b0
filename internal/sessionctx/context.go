// Package sessionctx carries the signed-in account through request
// contexts. Handlers set it after session validation; services read it
// instead of relying on any ambient login state.
package sessionctx

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type accountKey struct{}

// WithAccountID stores the signed-in account ID in the context.
func WithAccountID(ctx context.Context, id snowflake.ID) context.Context {
	return context.WithValue(ctx, accountKey{}, id)
}

// AccountIDFromContext returns the signed-in account ID, if set.
func AccountIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(accountKey{}).(snowflake.ID)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}
