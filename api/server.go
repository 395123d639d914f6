package api

import (
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/checkmarble/datalab/usecases"
)

// Headers of an upload are small, the body is capped separately by the size middleware
const maxHeaderBytes = 64 << 10

// serverTimeout leaves a margin above the longest route deadline, so that a timed out request is
// answered by the timeout middleware and not cut by the server.
func serverTimeout(conf Configuration) time.Duration {
	return max(conf.DefaultTimeout, conf.ProjectionTimeout, defaultRequestTimeout) + 5*time.Second
}

// NewServer registers the routes on the router and wraps it in an h2c handler, the service being
// exposed over cleartext HTTP/2 behind the load balancer.
func NewServer(router *gin.Engine, conf Configuration, uc usecases.Usecases) *http.Server {
	addRoutes(router, conf, uc)

	host := conf.Host
	if host == "" {
		host = "0.0.0.0"
	}
	timeout := serverTimeout(conf)

	return &http.Server{
		Addr:              net.JoinHostPort(host, conf.Port),
		Handler:           h2c.NewHandler(router, &http2.Server{IdleTimeout: timeout}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       timeout,
		MaxHeaderBytes:    maxHeaderBytes,
	}
}
