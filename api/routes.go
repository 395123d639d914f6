package api

import (
	"net/http"
	"time"

	"github.com/checkmarble/datalab/usecases"

	limits "github.com/gin-contrib/size"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	timeout "github.com/vearne/gin-timeout"
)

const (
	defaultMaxUploadBytes = 32 * 1024 * 1024 // 32MB
	defaultRequestTimeout = 30 * time.Second
)

func timeoutMiddleware(duration time.Duration) gin.HandlerFunc {
	return timeout.Timeout(
		timeout.WithTimeout(duration),
		timeout.WithErrorHttpCode(http.StatusRequestTimeout),
		timeout.WithDefaultMsg(`{"message":"request timeout","error_code":"request_timeout"}`),
	)
}

func addRoutes(r *gin.Engine, conf Configuration, uc usecases.Usecases) {
	maxUploadBytes := conf.MaxUploadBytes
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	if conf.DefaultTimeout <= 0 {
		conf.DefaultTimeout = defaultRequestTimeout
	}
	defaultTimeout := timeoutMiddleware(conf.DefaultTimeout)
	projectionTimeout := timeoutMiddleware(max(conf.ProjectionTimeout, conf.DefaultTimeout))

	r.GET("/liveness", handleLivenessProbe(uc))
	r.GET("/version", handleVersion(uc))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/datasets", defaultTimeout, handleListDatasets(uc))
	r.POST("/datasets", defaultTimeout, handleCreateDataset(uc))
	r.POST("/datasets/upload", limits.RequestSizeLimiter(maxUploadBytes), defaultTimeout, handleUploadDataset(uc))
	r.GET("/datasets/:name", defaultTimeout, handleGetDataset(uc))
	r.GET("/datasets/:name/rows", defaultTimeout, handleQueryDatasetRows(uc))
	r.POST("/datasets/:name/rows", defaultTimeout, handleInsertDatasetRows(uc))
	r.GET("/datasets/:name/chart", defaultTimeout, handleDatasetChart(uc))
	r.DELETE("/datasets/:name", defaultTimeout, handleDropDataset(uc))

	r.GET("/comparisons", defaultTimeout, handleListComparisons(uc))
	r.POST("/comparisons", defaultTimeout, handleCreateComparison(uc))
	r.GET("/comparisons/:id", defaultTimeout, handleGetComparison(uc))
	r.DELETE("/comparisons/:id", defaultTimeout, handleDeleteComparison(uc))
	r.POST("/comparisons/:id/scenarios", defaultTimeout, handleAddScenario(uc))
	r.GET("/comparisons/:id/compare", projectionTimeout, handleRunComparison(uc))

	r.GET("/scenarios/:id", defaultTimeout, handleGetScenario(uc))
	r.GET("/scenarios/:id/data", defaultTimeout, handleScenarioData(uc))
	r.POST("/scenarios/:id/snapshot", defaultTimeout, handleTakeSnapshot(uc))
	r.POST("/scenarios/:id/projection", projectionTimeout, handleProjectScenario(uc))
}
