package cmd

import (
	"github.com/checkmarble/datalab/infra"
	"github.com/checkmarble/datalab/utils"

	"github.com/cockroachdb/errors"
)

type CompiledConfig struct {
	Version string
}

type ServerConfig struct {
	loggingFormat     string
	sentryDsn         string
	enableTracing     bool
	telemetryExporter string
	gcpProjectId      string
	otelSamplingRates string
	maxParallelFits   int
}

func (config ServerConfig) Validate() error {
	if config.maxParallelFits <= 0 {
		return errors.New("maxParallelFits must be greater than 0")
	}
	switch config.telemetryExporter {
	case "otlp", "gcp":
	default:
		return errors.Newf("unknown tracing exporter '%s'", config.telemetryExporter)
	}
	return nil
}

func pgConfigFromEnv() infra.PgConfig {
	return infra.PgConfig{
		ConnectionString:    utils.GetEnv("PG_CONNECTION_STRING", ""),
		Database:            utils.GetEnv("PG_DATABASE", "datalab"),
		DbConnectWithSocket: utils.GetEnv("PG_CONNECT_WITH_SOCKET", false),
		Hostname:            utils.GetEnv("PG_HOSTNAME", ""),
		Password:            utils.GetEnv("PG_PASSWORD", ""),
		Port:                utils.GetEnv("PG_PORT", "5432"),
		User:                utils.GetEnv("PG_USER", ""),
		MaxPoolConnections:  utils.GetEnv("PG_MAX_POOL_SIZE", infra.DEFAULT_MAX_CONNECTIONS),
		SslMode:             utils.GetEnv("PG_SSL_MODE", "prefer"),
	}
}
