package dto

import (
	"time"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/pure_utils"
)

type APIScenarioComparison struct {
	Id        string         `json:"id"`
	OwnerId   string         `json:"owner_id"`
	Name      string         `json:"name"`
	Config    map[string]any `json:"config"`
	CreatedAt time.Time      `json:"created_at"`
	Scenarios []APIScenario  `json:"scenarios,omitempty"`
}

func AdaptScenarioComparisonDto(c models.ScenarioComparison) APIScenarioComparison {
	return APIScenarioComparison{
		Id:        c.Id,
		OwnerId:   c.OwnerId,
		Name:      c.Name,
		Config:    c.Config,
		CreatedAt: c.CreatedAt,
		Scenarios: pure_utils.Map(c.Scenarios, AdaptScenarioDto),
	}
}

type CreateComparisonBody struct {
	Name   string         `json:"name" binding:"required"`
	Config map[string]any `json:"config"`
}

type ComparisonUri struct {
	Id string `uri:"id" binding:"required,uuid"`
}

type RunComparisonQuery struct {
	ScenarioA string `form:"scenario_a" binding:"required_with=ScenarioB,omitempty,uuid"`
	ScenarioB string `form:"scenario_b" binding:"required_with=ScenarioA,omitempty,uuid"`
}

type APINumericSummary struct {
	Mean  float64  `json:"mean"`
	Std   *float64 `json:"std"`
	Min   float64  `json:"min"`
	Max   float64  `json:"max"`
	Count int      `json:"count"`
}

func adaptNumericSummary(s *models.NumericSummary) *APINumericSummary {
	if s == nil {
		return nil
	}
	return &APINumericSummary{
		Mean:  s.Mean,
		Std:   s.Std,
		Min:   s.Min,
		Max:   s.Max,
		Count: s.Count,
	}
}

type APIValueFrequency struct {
	Value     any     `json:"value"`
	Frequency float64 `json:"frequency"`
}

func adaptValueFrequency(v models.ValueFrequency) APIValueFrequency {
	return APIValueFrequency{Value: v.Value, Frequency: v.Frequency}
}

type APIColumnStats struct {
	Column      string              `json:"column"`
	Kind        string              `json:"kind"`
	A           *APINumericSummary  `json:"a,omitempty"`
	B           *APINumericSummary  `json:"b,omitempty"`
	DeltaPct    *float64            `json:"delta_pct,omitempty"`
	Correlation *float64            `json:"correlation,omitempty"`
	TopValuesA  []APIValueFrequency `json:"top_values_a,omitempty"`
	TopValuesB  []APIValueFrequency `json:"top_values_b,omitempty"`
}

func AdaptColumnStatsDto(s models.ColumnStats) APIColumnStats {
	stats := APIColumnStats{
		Column:      s.Column,
		Kind:        string(s.Kind),
		A:           adaptNumericSummary(s.NumericA),
		B:           adaptNumericSummary(s.NumericB),
		DeltaPct:    s.DeltaPct,
		Correlation: s.Correlation,
	}
	if s.Kind == models.ColumnKindCategorical {
		stats.TopValuesA = pure_utils.Map(s.TopValuesA, adaptValueFrequency)
		stats.TopValuesB = pure_utils.Map(s.TopValuesB, adaptValueFrequency)
	}
	return stats
}

type APIGlobalStats struct {
	SimilarityScore *float64 `json:"similarity_score,omitempty"`
	Rows            *int     `json:"rows,omitempty"`
}

type APISuggestion struct {
	Column    string  `json:"column"`
	ChangePct float64 `json:"change_pct"`
	Direction string  `json:"direction"`
	Note      string  `json:"note"`
}

func AdaptSuggestionDto(s models.Suggestion) APISuggestion {
	return APISuggestion{
		Column:    s.Column,
		ChangePct: s.ChangePct,
		Direction: string(s.Direction),
		Note:      s.Note,
	}
}

type APIVisualizationItem struct {
	Metric    string  `json:"metric"`
	ScenarioA float64 `json:"scenario_a"`
	ScenarioB float64 `json:"scenario_b"`
}

func AdaptVisualizationItemDto(v models.VisualizationItem) APIVisualizationItem {
	return APIVisualizationItem{
		Metric:    v.Metric,
		ScenarioA: v.ScenarioA,
		ScenarioB: v.ScenarioB,
	}
}

type APIComparisonReport struct {
	ScenarioA     APIScenario            `json:"scenario_a"`
	ScenarioB     APIScenario            `json:"scenario_b"`
	ColumnStats   []APIColumnStats       `json:"column_stats"`
	GlobalStats   APIGlobalStats         `json:"global_stats"`
	Suggestions   []APISuggestion        `json:"suggestions"`
	Visualization []APIVisualizationItem `json:"visualization"`
}

func AdaptComparisonReportDto(r models.ScenarioComparisonReport) APIComparisonReport {
	return APIComparisonReport{
		ScenarioA:   AdaptScenarioDto(r.ScenarioA),
		ScenarioB:   AdaptScenarioDto(r.ScenarioB),
		ColumnStats: pure_utils.Map(r.Comparison.ColumnStats, AdaptColumnStatsDto),
		GlobalStats: APIGlobalStats{
			SimilarityScore: r.Comparison.GlobalStats.SimilarityScore,
			Rows:            r.Comparison.GlobalStats.Rows,
		},
		Suggestions:   pure_utils.Map(r.Suggestions, AdaptSuggestionDto),
		Visualization: pure_utils.Map(r.Visualization, AdaptVisualizationItemDto),
	}
}
