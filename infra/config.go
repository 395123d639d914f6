package infra

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

type PgConfig struct {
	ConnectionString    string
	Database            string
	DbConnectWithSocket bool
	Hostname            string
	Password            string
	Port                string
	User                string
	MaxPoolConnections  int
	SslMode             string
}

func (config PgConfig) GetConnectionString() string {
	if config.ConnectionString != "" {
		return config.ConnectionString
	}

	if config.SslMode == "" {
		config.SslMode = "prefer"
	}

	connectionString := fmt.Sprintf("host=%s user=%s password=%s database=%s sslmode=%s",
		config.Hostname, config.User, config.Password, config.Database, config.SslMode)
	if !config.DbConnectWithSocket {
		// Cloud Run connects to the DB through a proxy and a unix socket, so we don't need need to specify the port
		// but we do when running locally
		connectionString = fmt.Sprintf("%s port=%s", connectionString, config.Port)
	}
	return connectionString
}

type TelemetryConfiguration struct {
	Enabled         bool
	ApplicationName string
	ProjectID       string
	// "otlp" (default) or "gcp"
	Exporter    string
	SamplingMap TelemetrySamplingMap
}

// TelemetrySamplingMap overrides the default sampling ratios, by http route prefix or by span name.
type TelemetrySamplingMap struct {
	HttpRoutes map[string]float64 `json:"http_routes"`
	SpanNames  map[string]float64 `json:"span_names"`
}

// ParseSamplingMap reads sampling overrides written as
// {"http_routes": {"/datasets": 0.5}, "span_names": {"projection.ProjectionEngine.Project": 1}}.
func ParseSamplingMap(raw string) (TelemetrySamplingMap, error) {
	var samplingMap TelemetrySamplingMap
	if raw == "" {
		return samplingMap, nil
	}
	if err := json.Unmarshal([]byte(raw), &samplingMap); err != nil {
		return TelemetrySamplingMap{}, errors.Wrap(err, "invalid tracing sampling rates")
	}
	for _, ratios := range []map[string]float64{samplingMap.HttpRoutes, samplingMap.SpanNames} {
		for key, ratio := range ratios {
			if ratio < 0 || ratio > 1 {
				return TelemetrySamplingMap{}, errors.Newf("sampling ratio of %s must be between 0 and 1", key)
			}
		}
	}
	return samplingMap, nil
}

type UploadsConfiguration struct {
	// gocloud.dev bucket url: file:///tmp/uploads, gs://bucket, s3://bucket...
	BucketUrl string
	// "blob" (default) or "duckdb"
	CsvReader string
	// Directory the duckdb reader resolves relative csv paths against
	LocalDirectory string
	MaxUploadBytes int64
	// Parsed csv files kept in memory, disabled when either is zero
	CacheSize int
	CacheTtl  time.Duration
}
