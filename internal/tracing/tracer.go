// Package tracing records catalog operations (load, active font change,
// preview download) as OpenTelemetry spans and exports them to a JSONL
// file, stdout or an OTLP collector.
package tracing

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	defaultServiceName  = "fontpick"
	defaultOTLPEndpoint = "localhost:4317"
)

// Config selects whether and where spans are exported.
type Config struct {
	Enabled bool
	// Exporter is "none", "file", "stdout" or "otlp". "none" still
	// samples spans so they reach in-process readers.
	Exporter       string
	FilePath       string
	OTLPEndpoint   string
	SampleRate     float64
	ServiceName    string
	ServiceVersion string
}

// DefaultConfig has tracing off with the file exporter preselected.
func DefaultConfig() Config {
	return Config{
		Exporter:     "file",
		OTLPEndpoint: defaultOTLPEndpoint,
		SampleRate:   1.0,
		ServiceName:  defaultServiceName,
	}
}

type exporterFunc func(Config) (sdktrace.SpanExporter, error)

var exporters = map[string]exporterFunc{
	"none": func(Config) (sdktrace.SpanExporter, error) { return nil, nil },
	"file": func(cfg Config) (sdktrace.SpanExporter, error) {
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("file_path required for file exporter")
		}
		return NewFileExporter(cfg.FilePath)
	},
	"stdout": func(Config) (sdktrace.SpanExporter, error) {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	},
	"otlp": func(cfg Config) (sdktrace.SpanExporter, error) {
		endpoint := cfg.OTLPEndpoint
		if endpoint == "" {
			endpoint = defaultOTLPEndpoint
		}
		return otlptracegrpc.New(context.Background(),
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure())
	},
}

// Provider owns the tracer handed to catalog managers.
type Provider struct {
	tracer   trace.Tracer
	shutdown func(context.Context) error
}

// NoopProvider returns a provider whose tracer records nothing.
func NoopProvider() *Provider {
	return &Provider{
		tracer:   noop.NewTracerProvider().Tracer(defaultServiceName),
		shutdown: func(context.Context) error { return nil },
	}
}

// NewProvider builds a provider from cfg and installs it as the global
// OpenTelemetry provider. A disabled config yields NoopProvider.
func NewProvider(cfg Config) (*Provider, error) {
	if !cfg.Enabled {
		return NoopProvider(), nil
	}

	kind := cfg.Exporter
	if kind == "" {
		kind = "none"
	}
	build, ok := exporters[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported exporter type: %s (want one of %s)",
			cfg.Exporter, strings.Join(slices.Sorted(maps.Keys(exporters)), ", "))
	}
	exporter, err := build(cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", kind, err)
	}

	name := cfg.ServiceName
	if name == "" {
		name = defaultServiceName
	}
	attrs := []attribute.KeyValue{attribute.String("service.name", name)}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", cfg.ServiceVersion))
	}

	rate := cfg.SampleRate
	if rate <= 0 {
		rate = 1.0
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewSchemaless(attrs...)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))),
	}
	if exporter != nil {
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	return &Provider{tracer: tp.Tracer(name), shutdown: tp.Shutdown}, nil
}

// Tracer returns the tracer. It is never nil.
func (p *Provider) Tracer() trace.Tracer { return p.tracer }

// Enabled reports whether spans are being recorded.
func (p *Provider) Enabled() bool {
	_, isNoop := p.tracer.(noop.Tracer)
	return !isNoop
}

// Shutdown flushes buffered spans and stops the exporter.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.shutdown(ctx)
}
