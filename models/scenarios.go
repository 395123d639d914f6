package models

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"
)

type ScenarioType string

const (
	ScenarioTypeBase       ScenarioType = "base"
	ScenarioTypeProjection ScenarioType = "projection"
)

func ScenarioTypeFrom(s string) ScenarioType {
	if s == string(ScenarioTypeProjection) {
		return ScenarioTypeProjection
	}
	return ScenarioTypeBase
}

type SourceType string

const (
	SourceTypeTable    SourceType = "table"
	SourceTypeCsv      SourceType = "csv"
	SourceTypeManual   SourceType = "manual"
	SourceTypeSnapshot SourceType = "snapshot"
)

// ScenarioSource is the data source a scenario points to. Each source kind only carries what it needs.
type ScenarioSource interface {
	SourceType() SourceType
	// SourceId is the value stored alongside the source type: dataset name, file path, or empty.
	SourceId() string
}

type TableSource struct {
	Dataset DatasetName
}

func (s TableSource) SourceType() SourceType { return SourceTypeTable }
func (s TableSource) SourceId() string       { return s.Dataset.String() }

type CsvSource struct {
	Path string
}

func (s CsvSource) SourceType() SourceType { return SourceTypeCsv }
func (s CsvSource) SourceId() string       { return s.Path }

// ManualSource has no live data: the scenario only holds what was put in its snapshot.
type ManualSource struct {
	Type SourceType
}

func (s ManualSource) SourceType() SourceType {
	if s.Type == "" {
		return SourceTypeManual
	}
	return s.Type
}
func (s ManualSource) SourceId() string { return "" }

func ScenarioSourceFrom(sourceType, sourceId string) (ScenarioSource, error) {
	switch SourceType(sourceType) {
	case SourceTypeTable:
		name, err := NewDatasetName(sourceId)
		if err != nil {
			return nil, err
		}
		return TableSource{Dataset: name}, nil
	case SourceTypeCsv:
		if sourceId == "" {
			return nil, errors.Wrap(BadParameterError, "csv source requires a file path")
		}
		return CsvSource{Path: sourceId}, nil
	case SourceTypeManual, SourceTypeSnapshot:
		return ManualSource{Type: SourceType(sourceType)}, nil
	default:
		return nil, errors.Wrapf(BadParameterError, "unknown source type '%s'", sourceType)
	}
}

// ScenarioSnapshot is an immutable, JSON-safe copy of the rows a scenario resolved to.
type ScenarioSnapshot struct {
	Config  map[string]any `json:"config"`
	Data    []Row          `json:"data"`
	TakenAt time.Time      `json:"taken_at"`
}

type Scenario struct {
	Id           string
	ComparisonId string
	Name         string
	Description  null.String
	Type         ScenarioType
	Source       ScenarioSource
	Snapshot     *ScenarioSnapshot
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (s Scenario) HasSnapshot() bool {
	return s.Snapshot != nil
}

type ScenarioComparison struct {
	Id        string
	OwnerId   string
	Name      string
	Config    map[string]any
	CreatedAt time.Time
	Scenarios []Scenario
}

type CreateScenarioComparisonInput struct {
	OwnerId string
	Name    string
	Config  map[string]any
}

type CreateScenarioInput struct {
	ComparisonId string
	Name         string
	Description  null.String
	Type         ScenarioType
	Source       ScenarioSource
	TakeSnapshot bool
	// Used when taking the snapshot at creation
	Resolve ResolveOptions
	// Inline rows of a manual scenario, stored as its snapshot
	ManualData []Row
}

// ResolveOptions restricts what is read from a scenario's live source.
type ResolveOptions struct {
	Columns []string
	Filters []Filter
	Limit   null.Int
}

// AsSnapshotConfig is the configuration recorded with a snapshot taken with these options.
func (o ResolveOptions) AsSnapshotConfig() map[string]any {
	filters := make([]map[string]any, len(o.Filters))
	for i, f := range o.Filters {
		filters[i] = map[string]any{
			"column":   f.Column,
			"operator": string(f.Operator),
			"value":    f.Value,
		}
	}
	config := map[string]any{
		"columns": o.Columns,
		"filters": filters,
	}
	if o.Limit.Valid {
		config["limit"] = o.Limit.Int64
	}
	return config
}
