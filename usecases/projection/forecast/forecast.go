package forecast

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
)

var (
	ErrNotEnoughPoints = errors.New("at least two observations are required")
	ErrNonFiniteValue  = errors.New("series contains a non finite value")
	ErrDegenerateFit   = errors.New("fit produced non finite coefficients")
)

// Series is one observed column, with strictly increasing times.
type Series struct {
	Times  []time.Time
	Values []float64
	// Spacing between two consecutive observations
	Step time.Duration
}

type Model interface {
	Predict(times []time.Time) []float64
}

// Forecaster fits a model on a series. Implementations must be safe for concurrent use: a single
// forecaster fits every column of a projection in parallel.
type Forecaster interface {
	Fit(ctx context.Context, series Series) (Model, error)
}
