package models

import "time"

type ProjectionParams struct {
	DateColumn string
	// Defaults to every numeric column but the date column
	ValueColumns []string
	Periods      int
}

type SkippedColumn struct {
	Column string
	Reason string
}

type ProjectionResult struct {
	DateColumn string
	Columns    []string
	Rows       []Row
	Skipped    []SkippedColumn
	// Step between two projected dates
	Step time.Duration
}

type ProjectScenarioInput struct {
	ScenarioId string
	Name       string
	Params     ProjectionParams
}
