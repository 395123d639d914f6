package dto

import (
	"time"

	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/pure_utils"
)

type APIDataset struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerId   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

func AdaptDatasetDto(d models.Dataset) APIDataset {
	return APIDataset{
		Id:        d.Id,
		Name:      d.Name.String(),
		OwnerId:   d.OwnerId,
		CreatedAt: d.CreatedAt,
	}
}

type APIDatasetColumn struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func AdaptDatasetColumnDto(c models.DatasetColumn) APIDatasetColumn {
	return APIDatasetColumn{
		Name: c.Name,
		Type: string(c.Type),
	}
}

type APIDatasetDetail struct {
	APIDataset
	Columns []APIDatasetColumn `json:"columns"`
}

func AdaptDatasetDetailDto(d models.DatasetDetail) APIDatasetDetail {
	return APIDatasetDetail{
		APIDataset: AdaptDatasetDto(d.Dataset),
		Columns:    pure_utils.Map(d.Schema, AdaptDatasetColumnDto),
	}
}

type APICreatedDataset struct {
	APIDatasetDetail
	InsertedRows int64  `json:"inserted_rows"`
	FilePath     string `json:"file_path,omitempty"`
}

func AdaptCreatedDatasetDto(d models.CreatedDataset) APICreatedDataset {
	return APICreatedDataset{
		APIDatasetDetail: AdaptDatasetDetailDto(d.DatasetDetail),
		InsertedRows:     d.InsertedRows,
		FilePath:         d.FilePath,
	}
}

// CreateDatasetBody creates a dataset from inline rows. When Columns is set, it declares the
// schema (column name to type) and ColumnOrder may fix the order of the columns.
type CreateDatasetBody struct {
	Name        string            `json:"name" binding:"required,dataset_name"`
	Columns     map[string]string `json:"columns"`
	ColumnOrder []string          `json:"column_order"`
	Rows        []map[string]any  `json:"rows"`
}

func AdaptCreateDatasetInput(body CreateDatasetBody, ownerId string) (models.CreateDatasetInput, error) {
	name, err := models.NewDatasetName(body.Name)
	if err != nil {
		return models.CreateDatasetInput{}, err
	}
	return models.CreateDatasetInput{
		Name:            name,
		OwnerId:         ownerId,
		DeclaredColumns: body.Columns,
		ColumnOrder:     body.ColumnOrder,
		Rows:            AdaptRows(body.Rows),
	}, nil
}

type UploadDatasetForm struct {
	Name string `form:"name" binding:"required,dataset_name"`
}

type InsertRowsBody struct {
	Rows []map[string]any `json:"rows" binding:"required,gt=0"`
}

type DatasetUri struct {
	Name string `uri:"name" binding:"required,dataset_name"`
}

type DatasetRowsQuery struct {
	Limit   int      `form:"limit" binding:"omitempty,min=0,max=10000"`
	Offset  int      `form:"offset" binding:"omitempty,min=0"`
	Columns []string `form:"columns"`
}

type APIDatasetRows struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

func AdaptDatasetRowsDto(page models.DatasetPage) APIDatasetRows {
	return APIDatasetRows{
		Columns: page.Columns,
		Rows:    AdaptRowsDto(page.Rows),
	}
}

func AdaptRows(rows []map[string]any) []models.Row {
	return pure_utils.Map(rows, func(r map[string]any) models.Row { return models.Row(r) })
}

func AdaptRowsDto(rows []models.Row) []map[string]any {
	return pure_utils.Map(rows, func(r models.Row) map[string]any { return map[string]any(r) })
}
