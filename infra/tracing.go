package infra

import (
	"context"
	"encoding/binary"
	"math"
	"strings"

	texporter "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	gcppropagator "github.com/GoogleCloudPlatform/opentelemetry-operations-go/propagator"
	"github.com/cockroachdb/errors"
	"google.golang.org/api/option"

	"go.opentelemetry.io/contrib/detectors/gcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type TelemetryRessources struct {
	TracerProvider    trace.TracerProvider
	Tracer            trace.Tracer
	TextMapPropagator propagation.TextMapPropagator
}

func NoopTelemetry() TelemetryRessources {
	return TelemetryRessources{
		TracerProvider:    noop.NewTracerProvider(),
		Tracer:            &noop.Tracer{},
		TextMapPropagator: propagation.TraceContext{},
	}
}

func newSpanExporter(ctx context.Context, configuration TelemetryConfiguration) (sdktrace.SpanExporter, error) {
	if configuration.Exporter == "gcp" {
		// an empty project id is resolved from the GCP metadata server
		exporter, err := texporter.New(
			texporter.WithProjectID(configuration.ProjectID),
			texporter.WithTraceClientOptions([]option.ClientOption{option.WithTelemetryDisabled()}),
		)
		return exporter, errors.Wrap(err, "could not create the cloud trace exporter")
	}
	exporter, err := otlptracegrpc.New(ctx)
	return exporter, errors.Wrap(err, "could not create the otlp exporter")
}

func InitTelemetry(configuration TelemetryConfiguration, apiVersion string) (TelemetryRessources, error) {
	if !configuration.Enabled {
		return NoopTelemetry(), nil
	}
	ctx := context.Background()

	exporter, err := newSpanExporter(ctx, configuration)
	if err != nil {
		return TelemetryRessources{}, err
	}

	res, err := resource.New(ctx,
		resource.WithDetectors(gcp.NewDetector()),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(configuration.ApplicationName),
			semconv.ServiceVersion(apiVersion),
		),
	)
	if err != nil {
		return TelemetryRessources{}, errors.Wrap(err, "could not describe the telemetry resource")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(RouteSampler{SamplingMap: configuration.SamplingMap}),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	propagators := propagation.NewCompositeTextMapPropagator(
		gcppropagator.CloudTraceFormatPropagator{},
		propagation.TraceContext{},
		propagation.Baggage{},
	)
	otel.SetTextMapPropagator(propagators)

	return TelemetryRessources{
		TracerProvider:    tp,
		Tracer:            tp.Tracer(configuration.ApplicationName),
		TextMapPropagator: propagators,
	}, nil
}

const DEFAULT_SAMPLING_RATE = 0.3

var (
	// Reading a whole csv file is slow and frequent, its spans are noisy
	defaultSpanNamesSampling = map[string]float64{
		"datasets.BlobCsvReader.ReadCsv":   0.2,
		"datasets.DuckDbCsvReader.ReadCsv": 0.2,
		"pool.acquire":                     0.0,
	}

	defaultRoutePrefixSampling = map[string]float64{
		"/liveness":                 0.0,
		"/version":                  0.0,
		"/debug/pprof":              0.0,
		"/datasets/:name/rows":      0.1,
		"/scenarios/:id/data":       0.1,
		"/comparisons/:id/compare":  1.0,
		"/scenarios/:id/projection": 1.0,
	}
)

// RouteSampler samples root spans by http route, and database spans along with their parent.
type RouteSampler struct {
	SamplingMap TelemetrySamplingMap
}

func (RouteSampler) Description() string {
	return "route-sampler"
}

func prefixRatio(value string, ratios ...map[string]float64) (float64, bool) {
	for _, byPrefix := range ratios {
		for prefix, ratio := range byPrefix {
			if strings.HasPrefix(value, prefix) {
				return ratio, true
			}
		}
	}
	return 0, false
}

func (rs RouteSampler) ratio(p sdktrace.SamplingParameters, parent trace.SpanContext) float64 {
	for _, attr := range p.Attributes {
		switch attr.Key {
		case semconv.HTTPRouteKey:
			if ratio, ok := prefixRatio(attr.Value.AsString(), rs.SamplingMap.HttpRoutes, defaultRoutePrefixSampling); ok {
				return ratio
			}
			return DEFAULT_SAMPLING_RATE
		case semconv.DBQueryTextKey:
			if strings.HasPrefix(p.Name, "prepare ") {
				return 0
			}
			if parent.IsSampled() {
				return 1
			}
			return DEFAULT_SAMPLING_RATE
		}
	}

	if ratio, ok := rs.SamplingMap.SpanNames[p.Name]; ok {
		return ratio
	}
	if ratio, ok := defaultSpanNamesSampling[p.Name]; ok {
		return ratio
	}
	return 1
}

func (rs RouteSampler) ShouldSample(p sdktrace.SamplingParameters) sdktrace.SamplingResult {
	parent := trace.SpanContextFromContext(p.ParentContext)

	// children of a span that was dropped are dropped too
	if parent.HasTraceID() && !parent.IsSampled() {
		return sdktrace.NeverSample().ShouldSample(p)
	}

	decision := sdktrace.Drop
	traceId := binary.BigEndian.Uint64(p.TraceID[:8])
	if traceId < uint64(rs.ratio(p, parent)*float64(math.MaxUint64)) {
		decision = sdktrace.RecordAndSample
	}

	return sdktrace.SamplingResult{
		Decision:   decision,
		Attributes: p.Attributes,
		Tracestate: parent.TraceState(),
	}
}
