package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction. Repos
// run on the transaction when one is set and on their own handle otherwise.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// New wraps ctx with no transaction.
func New(ctx context.Context) Context {
	return Context{Ctx: ctx}
}

// WithTx returns a copy of dbc bound to tx.
func (dbc Context) WithTx(tx *gorm.DB) Context {
	return Context{Ctx: dbc.Ctx, Tx: tx}
}
