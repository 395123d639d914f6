package projection

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/pure_utils"
	"github.com/checkmarble/datalab/usecases/datasets"
	"github.com/checkmarble/datalab/usecases/projection/forecast"
	"github.com/checkmarble/datalab/utils"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

const (
	defaultStep            = 24 * time.Hour
	defaultMaxParallelFits = 8
)

type ProjectionEngine struct {
	forecaster      forecast.Forecaster
	maxParallelFits int
}

func NewProjectionEngine(forecaster forecast.Forecaster, maxParallelFits int) ProjectionEngine {
	if maxParallelFits <= 0 {
		maxParallelFits = defaultMaxParallelFits
	}
	return ProjectionEngine{forecaster: forecaster, maxParallelFits: maxParallelFits}
}

type observation struct {
	at  time.Time
	row models.Row
}

type columnForecast struct {
	values []float64
	err    error
}

// Project extends every value column by params.Periods points past the last observed date. A column
// that cannot be forecast is reported in Skipped and does not fail the projection.
func (engine ProjectionEngine) Project(
	ctx context.Context,
	rows []models.Row,
	params models.ProjectionParams,
) (models.ProjectionResult, error) {
	logger := utils.LoggerFromContext(ctx)
	tracer := utils.OpenTelemetryTracerFromContext(ctx)
	ctx, span := tracer.Start(
		ctx,
		"projection.ProjectionEngine.Project",
		trace.WithAttributes(attribute.String("date_column", params.DateColumn)),
		trace.WithAttributes(attribute.Int("periods", params.Periods)),
		trace.WithAttributes(attribute.Int("rows", len(rows))),
	)
	defer span.End()
	start := time.Now()

	if len(rows) == 0 {
		return models.ProjectionResult{}, errors.Wrap(models.BadParameterError, "no rows to project")
	}
	if params.Periods <= 0 {
		return models.ProjectionResult{}, errors.Wrapf(models.BadParameterError,
			"periods must be positive, got %d", params.Periods)
	}
	if params.DateColumn == "" {
		return models.ProjectionResult{}, errors.Wrap(models.BadParameterError, "a date column is required")
	}

	observations, err := parseDates(rows, params.DateColumn)
	if err != nil {
		return models.ProjectionResult{}, err
	}
	times := make([]time.Time, len(observations))
	for i, o := range observations {
		times[i] = o.at
	}
	step := inferStep(times)
	future := futureTimes(times[len(times)-1], step, params.Periods)

	valueColumns := params.ValueColumns
	if len(valueColumns) == 0 {
		valueColumns = numericColumns(rows, params.DateColumn)
	}

	forecasts := make([]columnForecast, len(valueColumns))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(engine.maxParallelFits)
	for i, column := range valueColumns {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			values, err := engine.forecastColumn(groupCtx, observations, column, step, future)
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			forecasts[i] = columnForecast{values: values, err: err}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return models.ProjectionResult{}, errors.Wrap(err, "projection interrupted")
	}

	result := models.ProjectionResult{
		DateColumn: params.DateColumn,
		Columns:    []string{params.DateColumn},
		Rows:       make([]models.Row, len(future)),
		Skipped:    make([]models.SkippedColumn, 0),
		Step:       step,
	}
	dateOnly := isDateOnly(times, step)
	for k, t := range future {
		result.Rows[k] = models.Row{params.DateColumn: formatDate(t, dateOnly)}
	}
	for i, column := range valueColumns {
		if err := forecasts[i].err; err != nil {
			result.Skipped = append(result.Skipped, models.SkippedColumn{Column: column, Reason: err.Error()})
			utils.MetricProjectedColumns.With(prometheus.Labels{"outcome": "skipped"}).Inc()
			logger.DebugContext(ctx, fmt.Sprintf("column %s skipped from projection", column),
				"reason", err.Error(),
				"fit_failure", errors.Is(err, models.ModelFitError))
			continue
		}
		result.Columns = append(result.Columns, column)
		utils.MetricProjectedColumns.With(prometheus.Labels{"outcome": "projected"}).Inc()
		for k, value := range forecasts[i].values {
			result.Rows[k][column] = value
		}
	}

	utils.MetricProjectionLatency.Observe(time.Since(start).Seconds())
	logger.InfoContext(ctx, fmt.Sprintf("projected %d columns over %d periods", len(result.Columns)-1, params.Periods),
		"step", step.String(),
		"skipped", len(result.Skipped))
	return result, nil
}

func (engine ProjectionEngine) forecastColumn(
	ctx context.Context,
	observations []observation,
	column string,
	step time.Duration,
	future []time.Time,
) ([]float64, error) {
	series := forecast.Series{
		Times:  make([]time.Time, 0, len(observations)),
		Values: make([]float64, 0, len(observations)),
		Step:   step,
	}
	present := false
	for _, o := range observations {
		raw, ok := o.row[column]
		present = present || ok
		f, numeric, null := pure_utils.NumericValue(raw)
		if null {
			continue
		}
		if !numeric {
			return nil, errors.Newf("column %s holds non numeric value %v", column, raw)
		}
		series.Times = append(series.Times, o.at)
		series.Values = append(series.Values, f)
	}
	if !present {
		return nil, errors.Newf("column %s not found", column)
	}

	model, err := engine.forecaster.Fit(ctx, series)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	if err != nil {
		return nil, errors.Mark(err, models.ModelFitError)
	}
	return model.Predict(future), nil
}

// parseDates reads the date of every row and sorts the rows chronologically.
func parseDates(rows []models.Row, dateColumn string) ([]observation, error) {
	observations := make([]observation, 0, len(rows))
	for i, row := range rows {
		raw, ok := row[dateColumn]
		if !ok || raw == nil {
			return nil, errors.Wrapf(models.BadParameterError, "row %d has no value for date column %s", i, dateColumn)
		}
		at, ok := datasets.ToTime(raw)
		if !ok {
			return nil, errors.Wrapf(models.BadParameterError,
				"row %d: cannot parse '%v' from column %s as a date", i, raw, dateColumn)
		}
		observations = append(observations, observation{at: at, row: row})
	}
	sort.SliceStable(observations, func(i, j int) bool {
		return observations[i].at.Before(observations[j].at)
	})
	return observations, nil
}

// inferStep is the median spacing between distinct observed times, or one day when it cannot be
// measured.
func inferStep(sorted []time.Time) time.Duration {
	gaps := make([]float64, 0, len(sorted))
	for i := 1; i < len(sorted); i++ {
		if gap := sorted[i].Sub(sorted[i-1]); gap > 0 {
			gaps = append(gaps, float64(gap))
		}
	}
	if len(gaps) == 0 {
		return defaultStep
	}
	sort.Float64s(gaps)
	return time.Duration(stat.Quantile(0.5, stat.Empirical, gaps, nil))
}

// futureTimes returns the periods points following the last observation, strictly after it.
func futureTimes(last time.Time, step time.Duration, periods int) []time.Time {
	times := make([]time.Time, periods)
	for k := range times {
		times[k] = last.Add(time.Duration(k+1) * step)
	}
	return times
}

func numericColumns(rows []models.Row, dateColumn string) []string {
	columns := make([]string, 0)
	for _, column := range models.ColumnsOfRows(rows) {
		if column == dateColumn || column == models.DATASET_ROW_ID_COLUMN {
			continue
		}
		hasValue := false
		numeric := true
		for _, row := range rows {
			_, isNumeric, null := pure_utils.NumericValue(row[column])
			if null {
				continue
			}
			hasValue = true
			if !isNumeric {
				numeric = false
				break
			}
		}
		if hasValue && numeric {
			columns = append(columns, column)
		}
	}
	return columns
}

func isDateOnly(observed []time.Time, step time.Duration) bool {
	if step%defaultStep != 0 {
		return false
	}
	for _, t := range observed {
		if !t.Equal(t.Truncate(defaultStep)) {
			return false
		}
	}
	return true
}

func formatDate(t time.Time, dateOnly bool) string {
	if dateOnly {
		return t.UTC().Format(time.DateOnly)
	}
	return t.UTC().Format(time.RFC3339)
}
