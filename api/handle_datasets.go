package api

import (
	"net/http"

	"github.com/checkmarble/datalab/dto"
	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/pure_utils"
	"github.com/checkmarble/datalab/usecases"
	"github.com/checkmarble/datalab/usecases/datasets"
	"github.com/checkmarble/datalab/usecases/scenarios"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
)

// datasetNameFromUri returns the validated dataset name of the :name path parameter.
func datasetNameFromUri(c *gin.Context) (models.DatasetName, error) {
	var uri dto.DatasetUri
	if err := c.ShouldBindUri(&uri); err != nil {
		return models.DatasetName{}, errors.Mark(err, models.BadParameterError)
	}
	return models.NewDatasetName(uri.Name)
}

func handleListDatasets(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		usecase := uc.NewDatasetUsecase()
		datasets, err := usecase.ListDatasets(ctx, ownerIdFromRequest(c))
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusOK, gin.H{"datasets": pure_utils.Map(datasets, dto.AdaptDatasetDto)})
	}
}

func handleCreateDataset(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var data dto.CreateDatasetBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}
		input, err := dto.AdaptCreateDatasetInput(data, ownerIdFromRequest(c))
		if presentError(ctx, c, err) {
			return
		}

		usecase := uc.NewDatasetUsecase()
		created, err := usecase.CreateDataset(ctx, input)
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusCreated, gin.H{"dataset": dto.AdaptCreatedDatasetDto(created)})
	}
}

func handleUploadDataset(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var form dto.UploadDatasetForm
		if err := c.ShouldBind(&form); err != nil {
			presentBindingError(ctx, c, err)
			return
		}
		name, err := models.NewDatasetName(form.Name)
		if presentError(ctx, c, err) {
			return
		}

		file, err := c.FormFile("file")
		if err != nil {
			presentBindingError(ctx, c, errors.Wrap(err, "a csv or xlsx file is expected in the 'file' field"))
			return
		}
		if !datasets.IsUploadExtension(file.Filename) {
			presentError(ctx, c, errors.Wrapf(models.BadParameterError,
				"'%s' is not a csv or xlsx file", file.Filename))
			return
		}

		content, err := file.Open()
		if presentError(ctx, c, err) {
			return
		}
		defer content.Close()

		usecase := uc.NewDatasetUsecase()
		created, err := usecase.UploadDataset(ctx, ownerIdFromRequest(c), name, file.Filename, content)
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusCreated, gin.H{"dataset": dto.AdaptCreatedDatasetDto(created)})
	}
}

func handleGetDataset(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		name, err := datasetNameFromUri(c)
		if presentError(ctx, c, err) {
			return
		}

		usecase := uc.NewDatasetUsecase()
		dataset, err := usecase.GetDataset(ctx, name)
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusOK, gin.H{"dataset": dto.AdaptDatasetDetailDto(dataset)})
	}
}

func handleQueryDatasetRows(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		name, err := datasetNameFromUri(c)
		if presentError(ctx, c, err) {
			return
		}

		var query dto.DatasetRowsQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := uc.NewDatasetUsecase()
		page, err := usecase.QueryDataset(ctx, models.DatasetQuery{
			Name:    name,
			Columns: query.Columns,
			Limit:   query.Limit,
			Offset:  query.Offset,
		})
		if presentError(ctx, c, err) {
			return
		}
		page.Rows = scenarios.NormalizeRows(page.Rows)

		c.JSON(http.StatusOK, dto.AdaptDatasetRowsDto(page))
	}
}

func handleDatasetChart(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		name, err := datasetNameFromUri(c)
		if presentError(ctx, c, err) {
			return
		}

		var query dto.ChartQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := uc.NewDatasetUsecase()
		chart, err := usecase.Chart(ctx, models.ChartQuery{
			Dataset: name,
			Type:    models.ChartType(query.Type),
			X:       query.X,
			Y:       query.Y,
		})
		if presentError(ctx, c, err) {
			return
		}
		if chart.Points != nil {
			chart.Points = scenarios.NormalizeRows(chart.Points)
		}

		c.JSON(http.StatusOK, gin.H{"chart": dto.AdaptChartDto(chart)})
	}
}

func handleInsertDatasetRows(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		name, err := datasetNameFromUri(c)
		if presentError(ctx, c, err) {
			return
		}

		var data dto.InsertRowsBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := uc.NewDatasetUsecase()
		inserted, err := usecase.InsertRows(ctx, name, dto.AdaptRows(data.Rows))
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusCreated, gin.H{"inserted_rows": inserted})
	}
}

func handleDropDataset(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		name, err := datasetNameFromUri(c)
		if presentError(ctx, c, err) {
			return
		}

		usecase := uc.NewDatasetUsecase()
		if presentError(ctx, c, usecase.DropDataset(ctx, name)) {
			return
		}

		c.Status(http.StatusNoContent)
	}
}
