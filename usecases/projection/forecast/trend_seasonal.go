package forecast

import (
	"context"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	day              = 24 * time.Hour
	weeklySeasonDays = 7
	// Full seasonal cycles required before a seasonal component is estimated
	minSeasonalCycles = 2
)

// TrendSeasonalForecaster fits an additive model: a least squares linear trend, plus a day of week
// component for daily series long enough to hold two full weeks.
type TrendSeasonalForecaster struct{}

func NewTrendSeasonalForecaster() TrendSeasonalForecaster {
	return TrendSeasonalForecaster{}
}

type trendSeasonalModel struct {
	origin    time.Time
	intercept float64
	slope     float64
	// Indexed by time.Weekday, nil when the series has no seasonal component
	seasonal []float64
}

func (TrendSeasonalForecaster) Fit(ctx context.Context, series Series) (Model, error) {
	if len(series.Values) < 2 || len(series.Times) != len(series.Values) {
		return nil, ErrNotEnoughPoints
	}
	for _, v := range series.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrNonFiniteValue
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	model := trendSeasonalModel{origin: series.Times[0]}
	xs := make([]float64, len(series.Times))
	for i, t := range series.Times {
		xs[i] = model.position(t)
	}

	model.intercept, model.slope = stat.LinearRegression(xs, series.Values, nil, false)
	if math.IsNaN(model.intercept) || math.IsNaN(model.slope) ||
		math.IsInf(model.intercept, 0) || math.IsInf(model.slope, 0) {
		return nil, errors.Wrapf(ErrDegenerateFit, "intercept %v, slope %v", model.intercept, model.slope)
	}

	if series.Step == day && len(series.Values) >= minSeasonalCycles*weeklySeasonDays {
		model.seasonal = weekdayComponent(series, xs, model.intercept, model.slope)
	}
	return model, nil
}

// weekdayComponent averages the detrended values per day of week, centred so that a full week
// sums to zero.
func weekdayComponent(series Series, xs []float64, intercept, slope float64) []float64 {
	sums := make([]float64, weeklySeasonDays)
	counts := make([]float64, weeklySeasonDays)
	for i, t := range series.Times {
		weekday := t.Weekday()
		sums[weekday] += series.Values[i] - (intercept + slope*xs[i])
		counts[weekday]++
	}
	seasonal := make([]float64, weeklySeasonDays)
	for i := range seasonal {
		if counts[i] > 0 {
			seasonal[i] = sums[i] / counts[i]
		}
	}
	floats.AddConst(-stat.Mean(seasonal, nil), seasonal)
	return seasonal
}

// position is the time elapsed since the first observation, in days.
func (m trendSeasonalModel) position(t time.Time) float64 {
	return t.Sub(m.origin).Hours() / 24
}

func (m trendSeasonalModel) Predict(times []time.Time) []float64 {
	predictions := make([]float64, len(times))
	for i, t := range times {
		predictions[i] = m.intercept + m.slope*m.position(t)
		if m.seasonal != nil {
			predictions[i] += m.seasonal[t.Weekday()]
		}
	}
	return predictions
}
