// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelconfig builds the tracer providers the bindings command
// can export spans with.
package otelconfig

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// Common holds the settings shared by every exporter.
type Common struct {
	ServiceName string `config:"serviceName"`
}

// Initializer builds a tracer provider. Callers own the provider and must
// shut it down to flush buffered spans.
type Initializer interface {
	Init(context.Context) (*sdktrace.TracerProvider, error)
}

// Local exports spans as pretty printed JSON.
type Local struct {
	Common

	Out io.Writer
}

// Init implements the [Initializer] interface.
func (cfg Local) Init(ctx context.Context) (*sdktrace.TracerProvider, error) {
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(out),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, err
	}

	res, err := serviceResource(ctx, cfg.Common)
	if err != nil {
		return nil, err
	}

	// spans must be written before the command exits
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
	)
	return tp, nil
}

func serviceResource(ctx context.Context, c Common) (*resource.Resource, error) {
	return resource.New(
		ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(semconv.ServiceName(c.ServiceName)),
	)
}
