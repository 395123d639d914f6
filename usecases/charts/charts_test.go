package charts

import (
	"math"
	"testing"

	"github.com/checkmarble/datalab/models"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesPage() models.DatasetPage {
	return models.DatasetPage{
		Columns: []string{"id_", "region", "month", "amount", "units"},
		Rows: []models.Row{
			{"id_": int64(1), "region": "north", "month": int64(2), "amount": 10.0, "units": int64(1)},
			{"id_": int64(2), "region": "south", "month": int64(1), "amount": 20.0, "units": int64(2)},
			{"id_": int64(3), "region": "north", "month": int64(1), "amount": 30.0, "units": int64(3)},
			{"id_": int64(4), "region": nil, "month": int64(10), "amount": 40.0, "units": int64(4)},
			{"id_": int64(5), "region": "east", "month": int64(2), "amount": nil, "units": int64(5)},
		},
	}
}

func build(t *testing.T, chartType models.ChartType, x, y string) models.Chart {
	t.Helper()
	chart, err := Build(models.ChartQuery{Type: chartType, X: x, Y: y}, salesPage())
	require.NoError(t, err)
	assert.Equal(t, chartType, chart.Type)
	return chart
}

func TestBuild_ValueCounts(t *testing.T) {
	expected := []models.ChartPoint{
		{Label: "north", Value: 2},
		{Label: "east", Value: 1},
		{Label: "south", Value: 1},
	}

	assert.Equal(t, expected, build(t, models.ChartTypePie, "region", "").Series)
	assert.Equal(t, expected, build(t, models.ChartTypeBar, "region", "").Series)
}

func TestBuild_BarSumsPerGroup(t *testing.T) {
	chart := build(t, models.ChartTypeBar, "region", "amount")

	assert.Equal(t, []models.ChartPoint{
		{Label: "east", Value: 0},
		{Label: "north", Value: 40},
		{Label: "south", Value: 20},
	}, chart.Series)
}

func TestBuild_LineAveragesInKeyOrder(t *testing.T) {
	chart := build(t, models.ChartTypeLine, "month", "amount")

	assert.Equal(t, []models.ChartPoint{
		{Label: "1", Value: 25},
		{Label: "2", Value: 10},
		{Label: "10", Value: 40},
	}, chart.Series, "numeric keys are not sorted as text")
}

func TestBuild_Histogram(t *testing.T) {
	t.Run("ten bins between the extrema", func(t *testing.T) {
		bins := build(t, models.ChartTypeHistogram, "amount", "").Bins

		require.Len(t, bins, 10)
		counts := make([]int, len(bins))
		for i, bin := range bins {
			counts[i] = bin.Count
		}
		assert.Equal(t, []int{1, 0, 0, 1, 0, 0, 1, 0, 0, 1}, counts, "the maximum falls in the last bin")
		assert.Equal(t, "10.00-13.00", bins[0].Label)
		assert.Equal(t, "37.00-40.00", bins[9].Label)
	})

	t.Run("constant column", func(t *testing.T) {
		page := models.DatasetPage{Columns: []string{"v"}, Rows: []models.Row{{"v": 5}, {"v": 5}}}
		chart, err := Build(models.ChartQuery{Type: models.ChartTypeHistogram, X: "v"}, page)
		require.NoError(t, err)

		require.Len(t, chart.Bins, 10)
		assert.InDelta(t, 4.5, chart.Bins[0].Low, 1e-9)
		assert.InDelta(t, 5.5, chart.Bins[9].High, 1e-9)
		total := 0
		for _, bin := range chart.Bins {
			total += bin.Count
		}
		assert.Equal(t, 2, total)
	})

	t.Run("no value", func(t *testing.T) {
		page := models.DatasetPage{Columns: []string{"v"}, Rows: []models.Row{{"v": nil}}}
		chart, err := Build(models.ChartQuery{Type: models.ChartTypeHistogram, X: "v"}, page)
		require.NoError(t, err)
		assert.Empty(t, chart.Bins)
	})

	t.Run("text column", func(t *testing.T) {
		_, err := Build(models.ChartQuery{Type: models.ChartTypeHistogram, X: "region"}, salesPage())
		assert.True(t, errors.Is(err, models.BadParameterError))
	})
}

func TestBuild_Boxplot(t *testing.T) {
	t.Run("single column", func(t *testing.T) {
		groups := build(t, models.ChartTypeBoxplot, "", "amount").Groups

		require.Len(t, groups, 1)
		assert.Equal(t, "amount", groups[0].Group)
		description := groups[0].Description
		assert.Equal(t, 4, description.Count)
		assert.Equal(t, 25.0, description.Mean)
		require.NotNil(t, description.Std)
		assert.InDelta(t, math.Sqrt(500.0/3), *description.Std, 1e-9)
		assert.Equal(t, 10.0, description.Min)
		assert.Equal(t, 17.5, description.P25)
		assert.Equal(t, 25.0, description.Median)
		assert.Equal(t, 32.5, description.P75)
		assert.Equal(t, 40.0, description.Max)
	})

	t.Run("per group", func(t *testing.T) {
		groups := build(t, models.ChartTypeBoxplot, "region", "amount").Groups

		require.Len(t, groups, 2, "a group without any value is left out")
		assert.Equal(t, "north", groups[0].Group)
		assert.Equal(t, 2, groups[0].Description.Count)
		assert.Equal(t, 20.0, groups[0].Description.Median)
		assert.Equal(t, "south", groups[1].Group)
		assert.Nil(t, groups[1].Description.Std, "a single value has no sample deviation")
	})
}

func TestBuild_Scatter(t *testing.T) {
	chart := build(t, models.ChartTypeScatter, "region", "amount")

	assert.Equal(t, []models.Row{
		{"region": "north", "amount": 10.0},
		{"region": "south", "amount": 20.0},
		{"region": "north", "amount": 30.0},
	}, chart.Points)
}

func TestBuild_Heatmap(t *testing.T) {
	page := salesPage()
	page.Columns = append(page.Columns, "flat")
	for _, row := range page.Rows {
		row["flat"] = 1.0
	}

	chart, err := Build(models.ChartQuery{Type: models.ChartTypeHeatmap}, page)
	require.NoError(t, err)

	assert.Equal(t, []string{"month", "amount", "units", "flat"}, chart.Columns)
	require.Len(t, chart.Correlations, 4)
	require.NotNil(t, chart.Correlations[1][2])
	assert.Equal(t, 1.0, *chart.Correlations[1][2])
	assert.Equal(t, chart.Correlations[1][2], chart.Correlations[2][1])
	require.NotNil(t, chart.Correlations[0][0])
	assert.Equal(t, 1.0, *chart.Correlations[0][0])
	assert.Nil(t, chart.Correlations[3][3], "a constant column has no correlation")
	assert.Nil(t, chart.Correlations[1][3])
}

func TestBuild_Validation(t *testing.T) {
	tests := []struct {
		name  string
		query models.ChartQuery
	}{
		{"unknown type", models.ChartQuery{Type: "radar", X: "region"}},
		{"pie without x", models.ChartQuery{Type: models.ChartTypePie}},
		{"line without y", models.ChartQuery{Type: models.ChartTypeLine, X: "month"}},
		{"boxplot without y", models.ChartQuery{Type: models.ChartTypeBoxplot, X: "region"}},
		{"bar over text", models.ChartQuery{Type: models.ChartTypeBar, X: "month", Y: "region"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Build(test.query, salesPage())
			assert.True(t, errors.Is(err, models.BadParameterError))
		})
	}
}
