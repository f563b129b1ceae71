package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const serviceName = "secreport"

var flagTrace bool

// shutdownTracing flushes and stops the provider installed by startTracing
var shutdownTracing = func(context.Context) error { return nil }

// tracingRequested reports whether spans should be exported, either through
// --trace or OTEL_TRACES_EXPORTER=console
func tracingRequested() bool {
	if flagTrace {
		return true
	}
	exporter := strings.TrimSpace(os.Getenv("OTEL_TRACES_EXPORTER"))
	return strings.EqualFold(exporter, "console") || strings.EqualFold(exporter, "stdout")
}

// newTracerProvider builds a provider that hands every ended span to
// processor as soon as it ends
func newTracerProvider(processor sdktrace.SpanProcessor) *sdktrace.TracerProvider {
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", serviceName),
	))
	if err != nil {
		res = resource.Default()
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(processor),
		sdktrace.WithResource(res),
	)
}

// startTracing installs the global tracer provider when tracing is requested.
// Spans are written as JSON to w.
func startTracing(w io.Writer) error {
	if !tracingRequested() {
		return nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := newTracerProvider(sdktrace.NewSimpleSpanProcessor(exporter))
	otel.SetTracerProvider(tp)
	shutdownTracing = tp.Shutdown
	return nil
}

func stopTracing() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownTracing(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to flush traces: %v\n", err)
	}
	shutdownTracing = func(context.Context) error { return nil }
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagTrace, "trace", false, "Write OpenTelemetry spans for API requests to stderr")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return startTracing(cmd.ErrOrStderr())
	}
	cobra.OnFinalize(stopTracing)
}
