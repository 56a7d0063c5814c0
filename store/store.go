package store

import (
	"context"

	"github.com/fox-one/pkg/store/db"
)

type txKey struct{}

// WithTx ctx carrying tx, stores called with it read and write through tx
func WithTx(ctx context.Context, tx *db.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// DB the transaction carried by ctx, database when there is none
func DB(ctx context.Context, database *db.DB) *db.DB {
	if tx, ok := ctx.Value(txKey{}).(*db.DB); ok && tx != nil {
		return tx
	}

	return database
}

// Tx run fn inside a transaction of database, everything written through the
// ctx handed to fn is rolled back when fn returns an error.
//
// A ctx already carrying a transaction joins it.
func Tx(ctx context.Context, database *db.DB, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*db.DB); ok {
		return fn(ctx)
	}

	return database.Tx(func(tx *db.DB) error {
		return fn(WithTx(ctx, tx))
	})
}
