package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goliatone/go-sitepublish/pkg/interfaces"
)

// SQLExecutor is the subset of *sql.DB the adapter needs. A bun.DB exposes it through its
// embedded DB field.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var errNestedTransaction = errors.New("storage: nested transactions are not supported")

// SQLAdapter exposes a database handle as an interfaces.StorageProvider.
type SQLAdapter struct {
	db SQLExecutor
}

// NewSQLAdapter wraps db.
func NewSQLAdapter(db SQLExecutor) *SQLAdapter {
	return &SQLAdapter{db: db}
}

var _ interfaces.StorageProvider = (*SQLAdapter)(nil)

func (a *SQLAdapter) Query(ctx context.Context, query string, args ...any) (interfaces.Rows, error) {
	return wrapRows(a.db.QueryContext(ctx, query, args...))
}

func (a *SQLAdapter) Exec(ctx context.Context, query string, args ...any) (interfaces.Result, error) {
	return a.db.ExecContext(ctx, query, args...)
}

// Transaction runs fn inside a database transaction, committing when fn succeeds and
// rolling back otherwise.
func (a *SQLAdapter) Transaction(ctx context.Context, fn func(tx interfaces.Transaction) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&sqlTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("storage: rollback after %w: %v", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Query(ctx context.Context, query string, args ...any) (interfaces.Rows, error) {
	return wrapRows(t.tx.QueryContext(ctx, query, args...))
}

func (t *sqlTx) Exec(ctx context.Context, query string, args ...any) (interfaces.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

func (t *sqlTx) Transaction(context.Context, func(interfaces.Transaction) error) error {
	return errNestedTransaction
}

func (t *sqlTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback() error {
	return t.tx.Rollback()
}

func wrapRows(rows *sql.Rows, err error) (interfaces.Rows, error) {
	if err != nil {
		return nil, err
	}
	return rows, nil
}
