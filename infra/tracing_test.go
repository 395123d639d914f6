package infra

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
)

func samplingParameters(name string, attributes ...attribute.KeyValue) sdktrace.SamplingParameters {
	return sdktrace.SamplingParameters{
		ParentContext: context.Background(),
		TraceID:       trace.TraceID{0x10},
		Name:          name,
		Attributes:    attributes,
	}
}

func TestRouteSampler(t *testing.T) {
	sampler := RouteSampler{}

	result := sampler.ShouldSample(samplingParameters("GET /liveness", semconv.HTTPRouteKey.String("/liveness")))
	assert.Equal(t, sdktrace.Drop, result.Decision)

	result = sampler.ShouldSample(samplingParameters("GET /comparisons/:id/compare",
		semconv.HTTPRouteKey.String("/comparisons/:id/compare")))
	assert.Equal(t, sdktrace.RecordAndSample, result.Decision)

	result = sampler.ShouldSample(samplingParameters("pool.acquire"))
	assert.Equal(t, sdktrace.Drop, result.Decision)

	overridden := RouteSampler{SamplingMap: TelemetrySamplingMap{
		HttpRoutes: map[string]float64{"/liveness": 1.0},
	}}
	result = overridden.ShouldSample(samplingParameters("GET /liveness", semconv.HTTPRouteKey.String("/liveness")))
	assert.Equal(t, sdktrace.RecordAndSample, result.Decision)
}

func TestNoopTelemetry(t *testing.T) {
	telemetry, err := InitTelemetry(TelemetryConfiguration{Enabled: false}, "v1")
	assert.NoError(t, err)
	assert.NotNil(t, telemetry.Tracer)
	assert.NotNil(t, telemetry.TextMapPropagator)
}
