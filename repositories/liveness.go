package repositories

import (
	"context"

	"github.com/cockroachdb/errors"
)

type LivenessRepository struct{}

func (repo LivenessRepository) Liveness(ctx context.Context, exec Executor) error {
	var result int
	if err := exec.QueryRow(ctx, "SELECT 1").Scan(&result); err != nil {
		return errors.Wrap(err, "database is not reachable")
	}
	return nil
}
