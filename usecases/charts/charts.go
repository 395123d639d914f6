package charts

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/pure_utils"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const histogramBins = 10

// Build aggregates the rows of a page into the data of the requested chart. The axes of the query
// must be the storage names of the page columns.
func Build(query models.ChartQuery, page models.DatasetPage) (models.Chart, error) {
	if err := query.Validate(); err != nil {
		return models.Chart{}, err
	}
	chart := models.Chart{Type: query.Type, X: query.X, Y: query.Y}

	var err error
	switch query.Type {
	case models.ChartTypePie:
		chart.Series = valueCounts(page.Rows, query.X)
	case models.ChartTypeBar:
		if query.Y == "" {
			chart.Series = valueCounts(page.Rows, query.X)
			break
		}
		chart.Series, err = groupBy(page.Rows, query.X, query.Y, sum)
	case models.ChartTypeLine:
		chart.Series, err = groupBy(page.Rows, query.X, query.Y, mean)
	case models.ChartTypeHistogram:
		chart.Bins, err = histogram(page.Rows, query.X)
	case models.ChartTypeBoxplot:
		chart.Groups, err = boxplot(page.Rows, query.X, query.Y)
	case models.ChartTypeScatter:
		chart.Points = scatter(page.Rows, query.X, query.Y)
	case models.ChartTypeHeatmap:
		chart.Columns, chart.Correlations = correlations(page)
	}
	if err != nil {
		return models.Chart{}, err
	}
	return chart, nil
}

// valueCounts counts the non null values of a column, most frequent first.
func valueCounts(rows []models.Row, column string) []models.ChartPoint {
	counts := make(map[string]int)
	for _, row := range rows {
		value := row[column]
		if isNull(value) {
			continue
		}
		counts[label(value)]++
	}

	series := make([]models.ChartPoint, 0, len(counts))
	for l, count := range counts {
		series = append(series, models.ChartPoint{Label: l, Value: float64(count)})
	}
	sort.Slice(series, func(i, j int) bool {
		if series[i].Value != series[j].Value {
			return series[i].Value > series[j].Value
		}
		return series[i].Label < series[j].Label
	})
	return series
}

type group struct {
	key    any
	label  string
	values []float64
}

func sum(values []float64) (float64, bool) {
	return floats.Sum(values), true
}

func mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return stat.Mean(values, nil), true
}

// groupBy aggregates the numeric column y per value of x, ordered by x. Rows with a null x are left
// out, and groups the aggregate is not defined for are dropped.
func groupBy(rows []models.Row, x, y string, aggregate func([]float64) (float64, bool)) ([]models.ChartPoint, error) {
	groups, err := groupValues(rows, x, y, false)
	if err != nil {
		return nil, err
	}

	series := make([]models.ChartPoint, 0, len(groups))
	for _, g := range groups {
		value, ok := aggregate(g.values)
		if !ok {
			continue
		}
		series = append(series, models.ChartPoint{Label: g.label, Value: value})
	}
	return series, nil
}

func groupValues(rows []models.Row, x, y string, skipNullY bool) ([]*group, error) {
	byLabel := make(map[string]*group)
	groups := make([]*group, 0)
	for _, row := range rows {
		key := row[x]
		if isNull(key) {
			continue
		}
		value, numeric, null := pure_utils.NumericValue(row[y])
		if !null && !numeric {
			return nil, errors.Wrapf(models.BadParameterError, "column '%s' is not numeric", y)
		}
		if null && skipNullY {
			continue
		}

		l := label(key)
		g, ok := byLabel[l]
		if !ok {
			g = &group{key: key, label: l, values: make([]float64, 0)}
			byLabel[l] = g
			groups = append(groups, g)
		}
		if !null {
			g.values = append(g.values, value)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return lessValue(groups[i].key, groups[j].key)
	})
	return groups, nil
}

// histogram splits the non null values of a column in equal width bins between its extrema. The
// last bin includes its upper edge. A constant column is centered in a range of width one.
func histogram(rows []models.Row, column string) ([]models.HistogramBin, error) {
	values, err := numericValues(rows, column)
	if err != nil {
		return nil, err
	}
	bins := make([]models.HistogramBin, 0, histogramBins)
	if len(values) == 0 {
		return bins, nil
	}

	sort.Float64s(values)
	low, high := values[0], values[len(values)-1]
	if low == high {
		low, high = low-0.5, high+0.5
	}
	edges := floats.Span(make([]float64, histogramBins+1), low, high)

	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	dividers[len(dividers)-1] = math.Nextafter(high, math.Inf(1))
	counts := stat.Histogram(nil, dividers, values, nil)

	for i, count := range counts {
		bins = append(bins, models.HistogramBin{
			Label: fmt.Sprintf("%.2f-%.2f", edges[i], edges[i+1]),
			Low:   edges[i],
			High:  edges[i+1],
			Count: int(count),
		})
	}
	return bins, nil
}

// boxplot describes the numeric column y per value of x, or as a single group named after y when
// x is empty.
func boxplot(rows []models.Row, x, y string) ([]models.GroupDescription, error) {
	if x == "" {
		values, err := numericValues(rows, y)
		if err != nil {
			return nil, err
		}
		descriptions := make([]models.GroupDescription, 0, 1)
		if len(values) > 0 {
			descriptions = append(descriptions, models.GroupDescription{Group: y, Description: describe(values)})
		}
		return descriptions, nil
	}

	groups, err := groupValues(rows, x, y, true)
	if err != nil {
		return nil, err
	}
	descriptions := make([]models.GroupDescription, 0, len(groups))
	for _, g := range groups {
		descriptions = append(descriptions, models.GroupDescription{Group: g.label, Description: describe(g.values)})
	}
	return descriptions, nil
}

func describe(values []float64) models.NumericDescription {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	description := models.NumericDescription{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Min:    sorted[0],
		P25:    quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		P75:    quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
	if len(sorted) >= 2 {
		std := stat.StdDev(sorted, nil)
		description.Std = &std
	}
	return description
}

// quantile interpolates linearly between the closest ranks of sorted values, (n-1)p being the
// position of the quantile.
func quantile(sorted []float64, p float64) float64 {
	position := float64(len(sorted)-1) * p
	lower := int(math.Floor(position))
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lower] + (position-float64(lower))*(sorted[lower+1]-sorted[lower])
}

// scatter keeps the rows where both axes have a value.
func scatter(rows []models.Row, x, y string) []models.Row {
	points := make([]models.Row, 0, len(rows))
	for _, row := range rows {
		if isNull(row[x]) || isNull(row[y]) {
			continue
		}
		points = append(points, models.Row{x: row[x], y: row[y]})
	}
	return points
}

// correlations computes the Pearson correlation of every pair of numeric columns over the rows
// where both have a value, rounded to two decimals. The row id column is left out.
func correlations(page models.DatasetPage) ([]string, [][]*float64) {
	columns := make([]string, 0, len(page.Columns))
	for _, column := range page.Columns {
		if column == models.DATASET_ROW_ID_COLUMN {
			continue
		}
		if values, err := numericValues(page.Rows, column); err == nil && len(values) > 0 {
			columns = append(columns, column)
		}
	}

	matrix := make([][]*float64, len(columns))
	for i, a := range columns {
		matrix[i] = make([]*float64, len(columns))
		for j, b := range columns {
			matrix[i][j] = pairCorrelation(page.Rows, a, b)
		}
	}
	return columns, matrix
}

func pairCorrelation(rows []models.Row, a, b string) *float64 {
	xs := make([]float64, 0, len(rows))
	ys := make([]float64, 0, len(rows))
	for _, row := range rows {
		x, xNumeric, _ := pure_utils.NumericValue(row[a])
		y, yNumeric, _ := pure_utils.NumericValue(row[b])
		if xNumeric && yNumeric {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	if len(xs) < 2 {
		return nil
	}
	// NaN when either side is constant
	c := stat.Correlation(xs, ys, nil)
	if math.IsNaN(c) {
		return nil
	}
	c = pure_utils.Round(c, 2)
	return &c
}

// numericValues returns the non null values of a column, failing on any non numeric one.
func numericValues(rows []models.Row, column string) ([]float64, error) {
	values := make([]float64, 0, len(rows))
	for _, row := range rows {
		f, numeric, null := pure_utils.NumericValue(row[column])
		if null {
			continue
		}
		if !numeric {
			return nil, errors.Wrapf(models.BadParameterError, "column '%s' is not numeric", column)
		}
		values = append(values, f)
	}
	return values, nil
}

func isNull(value any) bool {
	_, _, null := pure_utils.NumericValue(value)
	return null
}

func label(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		if v.Equal(v.Truncate(24 * time.Hour)) {
			return v.Format(time.DateOnly)
		}
		return v.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	}
	return fmt.Sprint(value)
}

// lessValue orders numbers numerically and timestamps chronologically, anything else by label.
func lessValue(a, b any) bool {
	fa, numericA, _ := pure_utils.NumericValue(a)
	fb, numericB, _ := pure_utils.NumericValue(b)
	if numericA && numericB {
		return fa < fb
	}
	ta, timeA := a.(time.Time)
	tb, timeB := b.(time.Time)
	if timeA && timeB {
		return ta.Before(tb)
	}
	return label(a) < label(b)
}
