package repository

import (
	"context"

	"gorm.io/gorm"
)

// txContextKey keys the in-flight transaction handle on a context. An
// unexported struct key cannot collide with values set by other packages.
type txContextKey struct{}

// TransactionManager runs multi-repository writes in a single transaction by
// threading the transaction handle through the context every repository
// reads. The template service relies on it so demoting the old default and
// writing the new one commit or roll back together.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

// RunInTx opens a transaction and passes fn a context carrying it; a nil
// return commits, any error rolls the whole batch back.
func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// GetDB resolves the handle a repository call should use: the transaction on
// the context when one is in flight, the root connection otherwise.
func GetDB(ctx context.Context, rootDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return rootDB.WithContext(ctx)
}
