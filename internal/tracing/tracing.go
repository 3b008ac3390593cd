package tracing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// DefaultServiceName names the tracer used before InitTracer runs.
const DefaultServiceName = "card-sorting"

var tracer trace.Tracer

// Config selects how spans leave the process. The game runs next to its UI,
// so nothing is exported unless Exporter is "stdout".
type Config struct {
	ServiceName string
	Environment string

	Exporter    string // stdout|none
	PrettyPrint bool
	// Output receives stdout exports; nil means os.Stdout.
	Output io.Writer

	Sampler    string // OTEL_TRACES_SAMPLER values
	SamplerArg string
}

// InitTracer installs the global tracer provider and propagators and returns
// its shutdown function.
func InitTracer(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if cfg.ServiceName == "" {
		return nil, errors.New("tracing: ServiceName is required")
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("tracing: create resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.Environment, cfg.Sampler, cfg.SamplerArg)),
	}
	exp, err := newExporter(cfg)
	if err != nil {
		return nil, err
	}
	if exp != nil {
		opts = append(opts, sdktrace.WithBatcher(exp))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	tracer = tp.Tracer(cfg.ServiceName)
	return tp.Shutdown, nil
}

func newExporter(cfg Config) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Exporter)) {
	case "stdout":
		var opts []stdouttrace.Option
		if cfg.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		if cfg.Output != nil {
			opts = append(opts, stdouttrace.WithWriter(cfg.Output))
		}
		exp, err := stdouttrace.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("tracing: init stdout exporter: %w", err)
		}
		return exp, nil
	case "", "none", "noop":
		return nil, nil
	default:
		log.Printf("tracing: unsupported exporter=%q; spans will not be exported", cfg.Exporter)
		return nil, nil
	}
}

// newSampler follows the OTEL_TRACES_SAMPLER vocabulary. The default samples
// everything in development and a tenth of root spans elsewhere.
func newSampler(env, name, arg string) sdktrace.Sampler {
	switch name {
	case "", "parentbased_always_on":
		if env == "development" {
			return sdktrace.ParentBased(sdktrace.AlwaysSample())
		}
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.1))
	case "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	case "traceidratio":
		ratio, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			log.Printf("tracing: invalid sampler arg=%q for traceidratio; using 1.0", arg)
			ratio = 1
		}
		ratio = min(max(ratio, 0), 1)
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	default:
		log.Printf("tracing: unsupported sampler=%q; sampling everything", name)
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
}

// Tracer returns the package tracer, falling back to the global provider.
func Tracer() trace.Tracer {
	if tracer == nil {
		return otel.Tracer(DefaultServiceName)
	}
	return tracer
}

// StartSpan starts a span on the package tracer with optional attributes.
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if len(attrs) == 0 {
		return Tracer().Start(ctx, spanName)
	}
	return Tracer().Start(ctx, spanName, trace.WithAttributes(attrs...))
}
