package api

import (
	"net/http"

	"github.com/checkmarble/datalab/dto"
	"github.com/checkmarble/datalab/usecases"
	"github.com/gin-gonic/gin"
)

type ScenarioUri struct {
	Id string `uri:"id" binding:"required,uuid"`
}

func handleGetScenario(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri ScenarioUri
		if err := c.ShouldBindUri(&uri); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := uc.NewScenarioUsecase()
		scenario, err := usecase.GetScenario(ctx, uri.Id)
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusOK, gin.H{"scenario": dto.AdaptScenarioDto(scenario)})
	}
}

func handleScenarioData(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri ScenarioUri
		if err := c.ShouldBindUri(&uri); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		var query dto.ScenarioDataQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := uc.NewScenarioUsecase()
		rows, err := usecase.ScenarioData(ctx, uri.Id, dto.AdaptScenarioDataQuery(query))
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusOK, dto.AdaptScenarioDataDto(rows))
	}
}

func handleTakeSnapshot(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri ScenarioUri
		if err := c.ShouldBindUri(&uri); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		// the body is optional: no body snapshots the whole source
		var data dto.ResolveOptionsDto
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&data); err != nil {
				presentBindingError(ctx, c, err)
				return
			}
		}

		usecase := uc.NewScenarioUsecase()
		scenario, err := usecase.TakeSnapshot(ctx, uri.Id, dto.AdaptResolveOptions(data))
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusOK, gin.H{"scenario": dto.AdaptScenarioDto(scenario)})
	}
}

func handleProjectScenario(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var uri ScenarioUri
		if err := c.ShouldBindUri(&uri); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		var data dto.ProjectScenarioBody
		if err := c.ShouldBindJSON(&data); err != nil {
			presentBindingError(ctx, c, err)
			return
		}

		usecase := uc.NewScenarioUsecase()
		scenario, result, err := usecase.ProjectScenario(ctx, dto.AdaptProjectScenarioInput(uri.Id, data))
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusCreated, dto.AdaptProjectionDto(scenario, result))
	}
}
