package api

import (
	"net/http"

	"github.com/checkmarble/datalab/dto"
	"github.com/checkmarble/datalab/models"
	"github.com/checkmarble/datalab/pure_utils"
	"github.com/checkmarble/datalab/usecases"
	"github.com/gin-gonic/gin"
)

func handleListComparisons(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		usecase := uc.NewScenarioUsecase()
		comparisons, err := usecase.ListComparisons(ctx, ownerIdFromRequest(c))
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusOK, gin.H{"comparisons": pure_utils.Map(comparisons, dto.AdaptScenarioComparisonDto)})
	}
}

func handleCreateComparison(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var data dto.CreateComparisonBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := uc.NewScenarioUsecase()
		comparison, err := usecase.CreateComparison(ctx, models.CreateScenarioComparisonInput{
			OwnerId: ownerIdFromRequest(c),
			Name:    data.Name,
			Config:  data.Config,
		})
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusCreated, gin.H{"comparison": dto.AdaptScenarioComparisonDto(comparison)})
	}
}

func handleGetComparison(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri dto.ComparisonUri
		if err := c.ShouldBindUri(&uri); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := uc.NewScenarioUsecase()
		comparison, err := usecase.GetComparison(ctx, uri.Id)
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusOK, gin.H{"comparison": dto.AdaptScenarioComparisonDto(comparison)})
	}
}

func handleDeleteComparison(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri dto.ComparisonUri
		if err := c.ShouldBindUri(&uri); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := uc.NewScenarioUsecase()
		if presentError(ctx, c, usecase.DeleteComparison(ctx, uri.Id)) {
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func handleAddScenario(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri dto.ComparisonUri
		if err := c.ShouldBindUri(&uri); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		var data dto.CreateScenarioBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}
		input, err := dto.AdaptCreateScenarioInput(uri.Id, data)
		if presentError(ctx, c, err) {
			return
		}

		usecase := uc.NewScenarioUsecase()
		scenario, err := usecase.AddScenario(ctx, input)
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusCreated, gin.H{"scenario": dto.AdaptScenarioDto(scenario)})
	}
}

func handleRunComparison(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri dto.ComparisonUri
		if err := c.ShouldBindUri(&uri); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		var query dto.RunComparisonQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := uc.NewScenarioUsecase()
		report, err := usecase.RunComparison(ctx, uri.Id, query.ScenarioA, query.ScenarioB)
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusOK, dto.AdaptComparisonReportDto(report))
	}
}
