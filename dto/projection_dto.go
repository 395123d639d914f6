package dto

import (
	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/pure_utils"
)

type ProjectScenarioBody struct {
	Name         string   `json:"name"`
	DateColumn   string   `json:"date_column" binding:"required"`
	ValueColumns []string `json:"value_columns"`
	Periods      int      `json:"periods" binding:"required,gt=0,lte=1000"`
}

func AdaptProjectScenarioInput(scenarioId string, body ProjectScenarioBody) models.ProjectScenarioInput {
	return models.ProjectScenarioInput{
		ScenarioId: scenarioId,
		Name:       body.Name,
		Params: models.ProjectionParams{
			DateColumn:   body.DateColumn,
			ValueColumns: body.ValueColumns,
			Periods:      body.Periods,
		},
	}
}

type APISkippedColumn struct {
	Column string `json:"column"`
	Reason string `json:"reason"`
}

type APIProjection struct {
	Scenario    APIScenario        `json:"scenario"`
	DateColumn  string             `json:"date_column"`
	Columns     []string           `json:"columns"`
	Rows        []map[string]any   `json:"rows"`
	Skipped     []APISkippedColumn `json:"skipped"`
	StepSeconds float64            `json:"step_seconds"`
}

func AdaptProjectionDto(scenario models.Scenario, result models.ProjectionResult) APIProjection {
	return APIProjection{
		Scenario:   AdaptScenarioDto(scenario),
		DateColumn: result.DateColumn,
		Columns:    result.Columns,
		Rows:       AdaptRowsDto(result.Rows),
		Skipped: pure_utils.Map(result.Skipped, func(s models.SkippedColumn) APISkippedColumn {
			return APISkippedColumn{Column: s.Column, Reason: s.Reason}
		}),
		StepSeconds: result.Step.Seconds(),
	}
}
