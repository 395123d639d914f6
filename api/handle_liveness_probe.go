package api

import (
	"net/http"

	"github.com/checkmarble/datalab/usecases"
	"github.com/gin-gonic/gin"
)

func handleLivenessProbe(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usecase := uc.NewLivenessUsecase()
		err := usecase.Liveness(ctx)
		if presentError(ctx, c, err) {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"mood": "Feu flammes !",
		})
	}
}

func handleVersion(uc usecases.Usecases) func(c *gin.Context) {
	return func(c *gin.Context) {
		version := uc.NewVersionUsecase()
		c.JSON(http.StatusOK, gin.H{
			"app":     version.AppName,
			"version": version.ApiVersion,
		})
	}
}
