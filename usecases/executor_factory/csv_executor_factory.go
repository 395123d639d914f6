package executor_factory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/duckdb/duckdb-go/v2"
)

// CsvExecutorFactory hands out an in-memory duckdb database used to read csv files with native typing.
type CsvExecutorFactory struct{}

func NewCsvExecutorFactory() CsvExecutorFactory {
	return CsvExecutorFactory{}
}

var (
	ddbOnce sync.Once
	ddb     *sql.DB
	ddbErr  error
)

func (f CsvExecutorFactory) GetExecutor(ctx context.Context) (*sql.DB, error) {
	ddbOnce.Do(func() {
		var connector *duckdb.Connector

		connector, ddbErr = duckdb.NewConnector("", nil)
		if ddbErr != nil {
			ddbErr = errors.Wrap(ddbErr, "could not create duckdb connector")
			return
		}

		ddb = sql.OpenDB(connector)
		ddbErr = ddb.PingContext(ctx)
	})

	if ddbErr != nil {
		return nil, ddbErr
	}

	return ddb, nil
}

// BuildCsvSource returns the table function reading the file at path, to be used in a FROM clause.
func (f CsvExecutorFactory) BuildCsvSource(path string) string {
	return fmt.Sprintf(`read_csv_auto('%s', header = true)`, strings.ReplaceAll(path, "'", "''"))
}
