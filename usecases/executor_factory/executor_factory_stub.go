package executor_factory

import (
	"context"

	"github.com/checkmarble/datalab/repositories"
	"github.com/pashagolub/pgxmock/v4"
)

// ExecutorFactoryStub runs the repositories against a pgxmock pool. Transactions are real pgxmock
// transactions, so tests declare ExpectBegin/ExpectCommit/ExpectRollback around their statements.
type ExecutorFactoryStub struct {
	Mock pgxmock.PgxPoolIface
}

func NewExecutorFactoryStub() ExecutorFactoryStub {
	pool, _ := pgxmock.NewPool()

	return ExecutorFactoryStub{
		Mock: pool,
	}
}

func (stub ExecutorFactoryStub) NewExecutor() repositories.Executor {
	return stub.Mock
}

func (stub ExecutorFactoryStub) Transaction(ctx context.Context, fn func(tx repositories.Transaction) error) error {
	return repositories.NewExecutorGetter(stub.Mock).Transaction(ctx, fn)
}
