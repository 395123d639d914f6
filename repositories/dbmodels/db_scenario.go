package dbmodels

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/utils"
	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	TABLE_SCENARIO_COMPARISONS = "scenario_comparisons"
	TABLE_SCENARIOS            = "scenarios"
)

type DBScenarioComparison struct {
	Id        string    `db:"id"`
	OwnerId   string    `db:"owner_id"`
	Name      string    `db:"name"`
	Config    []byte    `db:"config"`
	CreatedAt time.Time `db:"created_at"`
}

var SelectScenarioComparisonColumns = utils.ColumnList[DBScenarioComparison]()

func AdaptScenarioComparison(db DBScenarioComparison) (models.ScenarioComparison, error) {
	config := map[string]any{}
	if len(db.Config) > 0 {
		if err := decodeJson(db.Config, &config); err != nil {
			return models.ScenarioComparison{}, errors.Wrap(err, "can't unmarshal scenario comparison config")
		}
	}
	return models.ScenarioComparison{
		Id:        db.Id,
		OwnerId:   db.OwnerId,
		Name:      db.Name,
		Config:    restoreNumbers(config).(map[string]any),
		CreatedAt: db.CreatedAt,
	}, nil
}

type DBScenario struct {
	Id           string      `db:"id"`
	ComparisonId string      `db:"comparison_id"`
	Name         string      `db:"name"`
	Description  pgtype.Text `db:"description"`
	ScenarioType string      `db:"scenario_type"`
	SourceType   string      `db:"source_type"`
	SourceId     string      `db:"source_id"`
	DataSnapshot []byte      `db:"data_snapshot"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

var SelectScenarioColumns = utils.ColumnList[DBScenario]()

func AdaptScenario(db DBScenario) (models.Scenario, error) {
	source, err := models.ScenarioSourceFrom(db.SourceType, db.SourceId)
	if err != nil {
		return models.Scenario{}, errors.Wrapf(err, "invalid source for scenario %s", db.Id)
	}

	scenario := models.Scenario{
		Id:           db.Id,
		ComparisonId: db.ComparisonId,
		Name:         db.Name,
		Description:  null.NewString(db.Description.String, db.Description.Valid),
		Type:         models.ScenarioTypeFrom(db.ScenarioType),
		Source:       source,
		CreatedAt:    db.CreatedAt,
		UpdatedAt:    db.UpdatedAt,
	}

	if len(db.DataSnapshot) > 0 && string(db.DataSnapshot) != "null" {
		var snapshot models.ScenarioSnapshot
		if err := decodeJson(db.DataSnapshot, &snapshot); err != nil {
			return models.Scenario{}, errors.Wrapf(err, "can't unmarshal data snapshot of scenario %s", db.Id)
		}
		if snapshot.Data == nil {
			snapshot.Data = []models.Row{}
		}
		for i, row := range snapshot.Data {
			snapshot.Data[i] = restoreNumbers(row).(map[string]any)
		}
		if snapshot.Config != nil {
			snapshot.Config = restoreNumbers(snapshot.Config).(map[string]any)
		}
		scenario.Snapshot = &snapshot
	}

	return scenario, nil
}

// decodeJson keeps numbers as json.Number so that integers are not narrowed to float64.
func decodeJson(raw []byte, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	return decoder.Decode(target)
}

// restoreNumbers turns the json.Number values left by decodeJson back into int64, or float64 when
// the number is not integral.
func restoreNumbers(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case models.Row:
		return restoreNumbers(map[string]any(v))
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = restoreNumbers(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = restoreNumbers(item)
		}
		return out
	}
	return value
}
