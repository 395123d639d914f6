package repositories

import (
	"context"

	"github.com/checkmarble/datalab/models"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Executor is satisfied by a connection pool and by a transaction
type Executor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Transaction is an Executor that is known to run inside a transaction. Repository methods that
// must be part of a unit of work (DDL, batch inserts) take a Transaction instead of an Executor.
type Transaction interface {
	Executor
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type pgPool interface {
	Executor
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

type ExecutorGetter struct {
	connectionPool pgPool
}

func NewExecutorGetter(pool pgPool) ExecutorGetter {
	return ExecutorGetter{
		connectionPool: pool,
	}
}

func (g ExecutorGetter) GetExecutor() Executor {
	return g.connectionPool
}

// Transaction runs fn inside a transaction: it is committed if fn returns nil, rolled back otherwise.
func (g ExecutorGetter) Transaction(ctx context.Context, fn func(tx Transaction) error) error {
	err := pgx.BeginFunc(ctx, g.connectionPool, func(tx pgx.Tx) error {
		return fn(tx)
	})

	// helper: The callback can return ErrIgnoreRollBackError
	// to explicitly specify that the error should be ignored.
	if errors.Is(err, models.ErrIgnoreRollBackError) {
		return nil
	}
	return errors.Wrap(err, "Error executing transaction")
}

func (g ExecutorGetter) Ping(ctx context.Context) error {
	return g.connectionPool.Ping(ctx)
}

// TransactionReturnValue runs fn in a transaction and returns the value it produced.
func TransactionReturnValue[ReturnType any](
	ctx context.Context,
	getter interface {
		Transaction(ctx context.Context, fn func(tx Transaction) error) error
	},
	fn func(tx Transaction) (ReturnType, error),
) (ReturnType, error) {
	var value ReturnType
	transactionErr := getter.Transaction(ctx, func(tx Transaction) error {
		var fnErr error
		value, fnErr = fn(tx)
		return fnErr
	})
	return value, transactionErr
}
