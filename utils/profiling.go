package utils

import (
	"context"
	"net/http"
	"net/http/pprof"

	"cloud.google.com/go/profiler"
	"github.com/gin-gonic/gin"
)

type ProfilingConfig struct {
	// "gcp" starts the cloud profiler agent, "http" exposes /debug/pprof, anything else disables profiling
	Mode         string
	Token        string
	ServiceName  string
	Version      string
	GcpProjectId string
}

func SetupProfilerEndpoints(ctx context.Context, r *gin.Engine, config ProfilingConfig) {
	switch config.Mode {
	case "gcp":
		cfg := profiler.Config{
			ProjectID:      config.GcpProjectId,
			Service:        config.ServiceName,
			ServiceVersion: config.Version,
		}

		if err := profiler.Start(cfg); err != nil {
			LoggerFromContext(ctx).WarnContext(ctx, "could not start the profiler", "error", err.Error())
		}

	case "http":
		if config.Token == "" {
			LoggerFromContext(ctx).WarnContext(ctx, "pprof endpoints require a token, not exposing them")
			return
		}
		pp := r.Group("/debug/pprof")
		pp.Use(func(c *gin.Context) {
			if c.Request.Header.Get("authorization") != "Bearer "+config.Token {
				c.AbortWithStatus(http.StatusUnauthorized)
			}
		})

		pp.GET("/profile", gin.WrapF(pprof.Profile))
		pp.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
		pp.GET("/heap", gin.WrapH(pprof.Handler("heap")))
		pp.GET("/block", gin.WrapH(pprof.Handler("block")))
		pp.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
	}
}
