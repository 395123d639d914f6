package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgConfig_GetConnectionString(t *testing.T) {
	config := PgConfig{
		Database: "datalab",
		Hostname: "localhost",
		Password: "secret",
		Port:     "5432",
		User:     "postgres",
	}
	assert.Equal(t,
		"host=localhost user=postgres password=secret database=datalab sslmode=prefer port=5432",
		config.GetConnectionString())

	config.DbConnectWithSocket = true
	config.SslMode = "disable"
	assert.Equal(t,
		"host=localhost user=postgres password=secret database=datalab sslmode=disable",
		config.GetConnectionString())

	assert.Equal(t, "postgres://u:p@h/db", PgConfig{ConnectionString: "postgres://u:p@h/db"}.GetConnectionString())
}

func TestParseSamplingMap(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		samplingMap, err := ParseSamplingMap("")
		require.NoError(t, err)
		assert.Empty(t, samplingMap.HttpRoutes)
	})

	t.Run("routes and spans", func(t *testing.T) {
		samplingMap, err := ParseSamplingMap(`{"http_routes": {"/datasets": 0.5}, "span_names": {"scenarios.ScenarioUsecase.RunComparison": 1}}`)
		require.NoError(t, err)
		assert.Equal(t, 0.5, samplingMap.HttpRoutes["/datasets"])
		assert.Equal(t, 1.0, samplingMap.SpanNames["scenarios.ScenarioUsecase.RunComparison"])
	})

	t.Run("ratio out of range", func(t *testing.T) {
		_, err := ParseSamplingMap(`{"http_routes": {"/datasets": 2}}`)
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := ParseSamplingMap(`/datasets=0.5`)
		assert.Error(t, err)
	})
}
