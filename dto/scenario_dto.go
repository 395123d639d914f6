package dto

import (
	"time"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/pure_utils"
	"github.com/guregu/null/v5"
)

type APIScenarioSnapshot struct {
	Config  map[string]any   `json:"config"`
	Rows    int              `json:"rows"`
	Data    []map[string]any `json:"data,omitempty"`
	TakenAt time.Time        `json:"taken_at"`
}

type APIScenario struct {
	Id           string               `json:"id"`
	ComparisonId string               `json:"comparison_id"`
	Name         string               `json:"name"`
	Description  null.String          `json:"description"`
	ScenarioType string               `json:"scenario_type"`
	SourceType   string               `json:"source_type"`
	SourceId     string               `json:"source_id"`
	Snapshot     *APIScenarioSnapshot `json:"snapshot"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// AdaptScenarioDto only exposes the size of the snapshot, its rows are served by the data endpoint.
func AdaptScenarioDto(s models.Scenario) APIScenario {
	scenario := APIScenario{
		Id:           s.Id,
		ComparisonId: s.ComparisonId,
		Name:         s.Name,
		Description:  s.Description,
		ScenarioType: string(s.Type),
		SourceType:   string(s.Source.SourceType()),
		SourceId:     s.Source.SourceId(),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.Snapshot != nil {
		scenario.Snapshot = &APIScenarioSnapshot{
			Config:  s.Snapshot.Config,
			Rows:    len(s.Snapshot.Data),
			TakenAt: s.Snapshot.TakenAt,
		}
	}
	return scenario
}

type FilterDto struct {
	Column   string `json:"column" binding:"required"`
	Operator string `json:"operator" binding:"required"`
	Value    any    `json:"value"`
}

func AdaptFilter(f FilterDto) models.Filter {
	return models.Filter{
		Column:   f.Column,
		Operator: models.FilterOperator(f.Operator),
		Value:    f.Value,
	}
}

type ResolveOptionsDto struct {
	Columns []string    `json:"columns"`
	Filters []FilterDto `json:"filters" binding:"dive"`
	Limit   null.Int    `json:"limit"`
}

func AdaptResolveOptions(o ResolveOptionsDto) models.ResolveOptions {
	return models.ResolveOptions{
		Columns: o.Columns,
		Filters: pure_utils.Map(o.Filters, AdaptFilter),
		Limit:   o.Limit,
	}
}

type CreateScenarioBody struct {
	Name         string           `json:"name" binding:"required"`
	Description  null.String      `json:"description"`
	ScenarioType string           `json:"scenario_type" binding:"omitempty,oneof=base projection"`
	SourceType   string           `json:"source_type" binding:"required,oneof=table csv manual snapshot"`
	SourceId     string           `json:"source_id"`
	TakeSnapshot bool             `json:"take_snapshot"`
	Data         []map[string]any `json:"data"`
	ResolveOptionsDto
}

func AdaptCreateScenarioInput(comparisonId string, body CreateScenarioBody) (models.CreateScenarioInput, error) {
	source, err := models.ScenarioSourceFrom(body.SourceType, body.SourceId)
	if err != nil {
		return models.CreateScenarioInput{}, err
	}
	return models.CreateScenarioInput{
		ComparisonId: comparisonId,
		Name:         body.Name,
		Description:  body.Description,
		Type:         models.ScenarioTypeFrom(body.ScenarioType),
		Source:       source,
		TakeSnapshot: body.TakeSnapshot,
		Resolve:      AdaptResolveOptions(body.ResolveOptionsDto),
		ManualData:   AdaptRows(body.Data),
	}, nil
}

type ScenarioDataQuery struct {
	Limit   int      `form:"limit" binding:"omitempty,min=1"`
	Columns []string `form:"columns"`
}

func AdaptScenarioDataQuery(q ScenarioDataQuery) models.ResolveOptions {
	options := models.ResolveOptions{Columns: q.Columns}
	if q.Limit > 0 {
		options.Limit = null.IntFrom(int64(q.Limit))
	}
	return options
}

type APIScenarioData struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

func AdaptScenarioDataDto(rows []models.Row) APIScenarioData {
	return APIScenarioData{
		Columns: models.ColumnsOfRows(rows),
		Rows:    AdaptRowsDto(rows),
	}
}
