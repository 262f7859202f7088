//go:build oteltracing

// Package tracing offers support for distributed tracing utilizing OpenTelemetry (OTEL).
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package tracing

import (
	"context"
	"strconv"

	"github.com/NVIDIA/fgfs/cmn"
	"github.com/NVIDIA/fgfs/cmn/nlog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/NVIDIA/fgfs"

var tp *trace.TracerProvider

func newExporter(conf *cmn.TracingConf) (trace.SpanExporter, error) {
	options := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(conf.ExporterEndpoint),
		otlptracegrpc.WithRetry(otlptracegrpc.RetryConfig{Enabled: true}),
	}
	if conf.Insecure {
		options = append(options, otlptracegrpc.WithInsecure())
	}
	return otlptracegrpc.New(context.Background(), options...)
}

func newResource(conf *cmn.TracingConf, rank int) *resource.Resource {
	attrs := []attribute.KeyValue{
		attribute.String("service.name", conf.ServiceName),
		attribute.String("rank", strconv.Itoa(rank)),
	}
	r, _ := resource.Merge(resource.Default(), resource.NewSchemaless(attrs...))
	return r
}

func IsEnabled() bool { return tp != nil }

func Init(conf *cmn.TracingConf, rank int) error {
	if conf == nil || !conf.Enabled {
		return nil
	}
	if err := conf.Validate(); err != nil {
		return err
	}
	exp, err := newExporter(conf)
	if err != nil {
		return err
	}
	tp = trace.NewTracerProvider(
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(conf.SamplerProbability))),
		trace.WithBatcher(exp),
		trace.WithResource(newResource(conf, rank)),
	)
	otel.SetTracerProvider(tp)
	nlog.Infof("tracing: exporting to %s", conf.ExporterEndpoint)
	return nil
}

func Shutdown() {
	if tp == nil {
		return
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		nlog.Errorln("tracing shutdown:", err)
	}
	tp = nil
}

// Start opens a span around a collective query;
// the returned func records the outcome and ends the span
func Start(name string, kvs ...string) func(outcome string) {
	if tp == nil {
		return func(string) {}
	}
	attrs := make([]attribute.KeyValue, 0, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		attrs = append(attrs, attribute.String(kvs[i], kvs[i+1]))
	}
	_, span := otel.Tracer(tracerName).Start(context.Background(), name, oteltrace.WithAttributes(attrs...))
	return func(outcome string) {
		span.SetAttributes(attribute.String("outcome", outcome))
		span.End()
	}
}
