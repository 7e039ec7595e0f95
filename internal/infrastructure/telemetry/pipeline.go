// Package telemetry wires the storefront's OpenTelemetry signals. Traces,
// metrics and logs each get an OTLP/gRPC pipeline to the same collector;
// a disabled pipeline falls back to the global no-op provider.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Collector is the OTLP endpoint every pipeline exports to, plus the
// service identity stamped on what it exports.
type Collector struct {
	Endpoint       string
	Insecure       bool
	ServiceName    string
	ServiceVersion string
}

func (c Collector) resource() (*resource.Resource, error) {
	version := c.ServiceVersion
	if version == "" {
		version = "dev"
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(c.ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// pipeline is the lifecycle shared by the tracer, meter and logger
// providers. A disabled pipeline has no hooks and every call is a no-op.
type pipeline struct {
	signal   string
	logger   *zap.Logger
	flush    func(context.Context) error
	shutdown func(context.Context) error
}

func newPipeline(signal string, logger *zap.Logger) pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return pipeline{signal: signal, logger: logger}
}

// IsEnabled reports whether the pipeline exports to a collector
func (p *pipeline) IsEnabled() bool {
	return p != nil && p.shutdown != nil
}

// ForceFlush exports everything buffered so far
func (p *pipeline) ForceFlush(ctx context.Context) error {
	if !p.IsEnabled() {
		return nil
	}
	return p.flush(ctx)
}

// Shutdown flushes and stops the pipeline, waiting at most ten seconds
func (p *pipeline) Shutdown(ctx context.Context) error {
	if !p.IsEnabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := p.shutdown(ctx); err != nil {
		p.logger.Error("Telemetry pipeline shutdown failed",
			zap.String("signal", p.signal),
			zap.Error(err),
		)
		return fmt.Errorf("failed to shutdown %s pipeline: %w", p.signal, err)
	}
	p.logger.Info("Telemetry pipeline stopped", zap.String("signal", p.signal))
	return nil
}

func (p *pipeline) started(c Collector, fields ...zap.Field) {
	p.logger.Info("Telemetry pipeline started", append([]zap.Field{
		zap.String("signal", p.signal),
		zap.String("collector_endpoint", c.Endpoint),
		zap.String("service_name", c.ServiceName),
	}, fields...)...)
}
