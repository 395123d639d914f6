package models

type ColumnKind string

const (
	ColumnKindNumeric     ColumnKind = "numeric"
	ColumnKindCategorical ColumnKind = "categorical"
)

type NumericSummary struct {
	Mean float64
	// Std is absent when the side has fewer than two values
	Std   *float64
	Min   float64
	Max   float64
	Count int
}

type ValueFrequency struct {
	Value     any
	Frequency float64
}

type ColumnStats struct {
	Column string
	Kind   ColumnKind

	// Numeric columns only
	NumericA    *NumericSummary
	NumericB    *NumericSummary
	DeltaPct    *float64
	Correlation *float64

	// Categorical columns only
	TopValuesA []ValueFrequency
	TopValuesB []ValueFrequency
}

// GlobalStats is left empty when the two row sets do not have the same cardinality.
type GlobalStats struct {
	SimilarityScore *float64
	Rows            *int
}

type ComparisonResult struct {
	ColumnStats []ColumnStats
	GlobalStats GlobalStats
}

type ChangeDirection string

const (
	ChangeIncrease ChangeDirection = "increase"
	ChangeDecrease ChangeDirection = "decrease"
)

type Suggestion struct {
	Column    string
	ChangePct float64
	Direction ChangeDirection
	Note      string
}

type VisualizationItem struct {
	Metric    string
	ScenarioA float64
	ScenarioB float64
}

// ScenarioComparisonReport is what running a comparison between the two scenarios of a
// ScenarioComparison yields.
type ScenarioComparisonReport struct {
	ScenarioA     Scenario
	ScenarioB     Scenario
	Comparison    ComparisonResult
	Suggestions   []Suggestion
	Visualization []VisualizationItem
}
