package models

import "github.com/cockroachdb/errors"

type ChartType string

const (
	ChartTypePie       ChartType = "pie"
	ChartTypeBar       ChartType = "bar"
	ChartTypeLine      ChartType = "line"
	ChartTypeHistogram ChartType = "histogram"
	ChartTypeBoxplot   ChartType = "boxplot"
	ChartTypeScatter   ChartType = "scatter"
	ChartTypeHeatmap   ChartType = "heatmap"
)

var ChartTypes = []ChartType{
	ChartTypePie,
	ChartTypeBar,
	ChartTypeLine,
	ChartTypeHistogram,
	ChartTypeBoxplot,
	ChartTypeScatter,
	ChartTypeHeatmap,
}

type ChartQuery struct {
	Dataset DatasetName
	Type    ChartType
	X       string
	Y       string
}

// Validate checks that the axes needed by the chart type are set.
func (q ChartQuery) Validate() error {
	needsX, needsY := false, false
	switch q.Type {
	case ChartTypePie, ChartTypeBar, ChartTypeHistogram:
		needsX = true
	case ChartTypeLine, ChartTypeScatter:
		needsX, needsY = true, true
	case ChartTypeBoxplot:
		needsY = true
	case ChartTypeHeatmap:
	default:
		return errors.Wrapf(BadParameterError, "unsupported chart type '%s'", q.Type)
	}
	if needsX && q.X == "" {
		return errors.Wrapf(BadParameterError, "column x is required for a %s chart", q.Type)
	}
	if needsY && q.Y == "" {
		return errors.Wrapf(BadParameterError, "column y is required for a %s chart", q.Type)
	}
	return nil
}

type ChartPoint struct {
	Label string
	Value float64
}

type HistogramBin struct {
	Label string
	Low   float64
	High  float64
	Count int
}

type NumericDescription struct {
	Count int
	Mean  float64
	// Absent with fewer than two values
	Std    *float64
	Min    float64
	P25    float64
	Median float64
	P75    float64
	Max    float64
}

type GroupDescription struct {
	Group       string
	Description NumericDescription
}

// Chart holds the aggregated data of one chart. Only the fields of its type are set: Series for
// pie, bar and line charts, Bins for histograms, Groups for boxplots, Points for scatter plots and
// Columns with Correlations for heatmaps.
type Chart struct {
	Type ChartType
	X    string
	Y    string

	Series []ChartPoint
	Bins   []HistogramBin
	Groups []GroupDescription
	Points []Row

	Columns []string
	// Correlations[i][j] is nil when the pair of columns has no defined correlation
	Correlations [][]*float64
}
