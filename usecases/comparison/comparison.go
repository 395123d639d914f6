package comparison

import (
	"fmt"
	"math"
	"sort"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/pure_utils"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	topValuesCount = 3
	// Columns whose mean moved by more than this percentage get a suggestion
	suggestionThresholdPct = 10.0
)

// Compare computes per column statistics of two row sets over the columns they share.
// Global statistics are only set when both sides have the same number of rows.
func Compare(a, b []models.Row) models.ComparisonResult {
	result := models.ComparisonResult{ColumnStats: make([]models.ColumnStats, 0)}

	for _, column := range sharedColumns(a, b) {
		valuesA, numericA := numericColumn(a, column)
		valuesB, numericB := numericColumn(b, column)
		if numericA && numericB {
			result.ColumnStats = append(result.ColumnStats, numericStats(a, b, column, valuesA, valuesB))
			continue
		}
		result.ColumnStats = append(result.ColumnStats, models.ColumnStats{
			Column:     column,
			Kind:       models.ColumnKindCategorical,
			TopValuesA: topValues(a, column),
			TopValuesB: topValues(b, column),
		})
	}

	if len(a) == len(b) {
		score := SimilarityScore(a, b)
		rows := len(a)
		result.GlobalStats = models.GlobalStats{SimilarityScore: &score, Rows: &rows}
	}
	return result
}

func numericStats(a, b []models.Row, column string, valuesA, valuesB []float64) models.ColumnStats {
	summaryA := summarize(valuesA)
	summaryB := summarize(valuesB)
	delta := deltaPct(summaryA.Mean, summaryB.Mean)

	stats := models.ColumnStats{
		Column:   column,
		Kind:     models.ColumnKindNumeric,
		NumericA: &summaryA,
		NumericB: &summaryB,
		DeltaPct: &delta,
	}
	if len(a) == len(b) {
		xs, ys := alignedPairs(a, b, column)
		if len(xs) >= 2 {
			// NaN when either side is constant
			if c := stat.Correlation(xs, ys, nil); !math.IsNaN(c) {
				stats.Correlation = &c
			}
		}
	}
	return stats
}

func summarize(values []float64) models.NumericSummary {
	summary := models.NumericSummary{
		Mean:  stat.Mean(values, nil),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
		Count: len(values),
	}
	if len(values) >= 2 {
		std := stat.StdDev(values, nil)
		summary.Std = &std
	}
	return summary
}

// deltaPct is the relative change of the mean from a to b. A zero base mean is replaced by 1.
func deltaPct(meanA, meanB float64) float64 {
	base := meanA
	if base == 0 {
		base = 1
	}
	return (meanB - meanA) / base * 100
}

func topValues(rows []models.Row, column string) []models.ValueFrequency {
	type counted struct {
		value any
		count int
		first int
	}
	counts := make(map[string]*counted)
	total := 0
	for _, row := range rows {
		value, ok := row[column]
		if !ok || value == nil {
			continue
		}
		if _, _, null := pure_utils.NumericValue(value); null {
			continue
		}
		key := valueKey(value)
		if c, ok := counts[key]; ok {
			c.count++
		} else {
			counts[key] = &counted{value: value, count: 1, first: total}
		}
		total++
	}

	ranked := make([]*counted, 0, len(counts))
	for _, c := range counts {
		ranked = append(ranked, c)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].first < ranked[j].first
	})

	top := make([]models.ValueFrequency, 0, topValuesCount)
	for _, c := range ranked[:min(topValuesCount, len(ranked))] {
		top = append(top, models.ValueFrequency{
			Value:     c.value,
			Frequency: float64(c.count) / float64(total),
		})
	}
	return top
}

// SimilarityScore averages, over the shared numeric columns, how close the mean of b is to the mean
// of a. Each column scores between 0 and 1. The score is 0 when no column is numeric.
func SimilarityScore(a, b []models.Row) float64 {
	var sum float64
	var numericColumns int
	for _, column := range sharedColumns(a, b) {
		valuesA, numericA := numericColumn(a, column)
		valuesB, numericB := numericColumn(b, column)
		if !numericA || !numericB {
			continue
		}
		meanA := stat.Mean(valuesA, nil)
		meanB := stat.Mean(valuesB, nil)
		base := math.Abs(meanA)
		if base == 0 {
			base = 1
		}
		sum += math.Max(0, 1-math.Abs(meanA-meanB)/base)
		numericColumns++
	}
	if numericColumns == 0 {
		return 0
	}
	return pure_utils.Round(sum/float64(numericColumns), 3)
}

// Suggest reports the numeric columns whose mean changed by more than 10% between the two sides.
func Suggest(result models.ComparisonResult) []models.Suggestion {
	suggestions := make([]models.Suggestion, 0)
	for _, stats := range result.ColumnStats {
		if stats.Kind != models.ColumnKindNumeric || stats.DeltaPct == nil {
			continue
		}
		delta := *stats.DeltaPct
		if math.Abs(delta) <= suggestionThresholdPct {
			continue
		}
		direction := models.ChangeIncrease
		if delta < 0 {
			direction = models.ChangeDecrease
		}
		change := pure_utils.Round(delta, 2)
		suggestions = append(suggestions, models.Suggestion{
			Column:    stats.Column,
			ChangePct: change,
			Direction: direction,
			Note: fmt.Sprintf("mean of %s %sd by %.2f%% between the two scenarios",
				stats.Column, direction, math.Abs(change)),
		})
	}
	return suggestions
}

// SuggestRows compares the two row sets and returns the suggestions for the result.
func SuggestRows(a, b []models.Row) []models.Suggestion {
	return Suggest(Compare(a, b))
}

// Visualize sums every shared numeric column on both sides, for charting. The row id column and
// columns holding any non numeric value are left out.
func Visualize(a, b []models.Row) []models.VisualizationItem {
	items := make([]models.VisualizationItem, 0)
	for _, column := range sharedColumns(a, b) {
		if column == models.DATASET_ROW_ID_COLUMN {
			continue
		}
		valuesA, numericA := numericColumn(a, column)
		valuesB, numericB := numericColumn(b, column)
		if !numericA || !numericB {
			continue
		}
		items = append(items, models.VisualizationItem{
			Metric:    column,
			ScenarioA: pure_utils.Round(floats.Sum(valuesA), 2),
			ScenarioB: pure_utils.Round(floats.Sum(valuesB), 2),
		})
	}
	return items
}
