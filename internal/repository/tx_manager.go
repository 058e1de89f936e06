package repository

import (
	"context"

	"gorm.io/gorm"
)

// TransactionManager runs a unit of work in one database transaction.
// Repositories reached with the context handed to fn resolve that transaction
// through Conn.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type openTx struct{}

type gormTxManager struct {
	root *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return gormTxManager{root: db}
}

// RunInTx commits when fn returns nil and rolls back otherwise. A context that
// already carries a transaction is passed through so nested calls share one commit.
func (m gormTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}
	return m.root.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}

// InTx reports whether ctx carries an open transaction.
func InTx(ctx context.Context) bool {
	_, ok := txFrom(ctx)
	return ok
}

// Conn is the handle a repository queries with: the transaction bound to ctx,
// or root.
func Conn(ctx context.Context, root *gorm.DB) *gorm.DB {
	if tx, ok := txFrom(ctx); ok {
		root = tx
	}
	return root.WithContext(ctx)
}

func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, openTx{}, tx)
}

func txFrom(ctx context.Context) (*gorm.DB, bool) {
	tx, ok := ctx.Value(openTx{}).(*gorm.DB)
	return tx, ok && tx != nil
}
