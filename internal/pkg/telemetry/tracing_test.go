package telemetry

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestInitTracer_UnknownExporter(t *testing.T) {
	_, err := InitTracer(context.Background(), Config{ServiceName: "svc", Exporter: "zipkin"})
	assert.Error(t, err)
}

func TestInitTracer_NoneIsNoop(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), Config{ServiceName: "svc", Exporter: ExporterNone})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTraceContextRoundTrip(t *testing.T) {
	_, err := InitTracer(context.Background(), Config{Exporter: ExporterNone})
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())
	otel.SetTracerProvider(tp)

	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	attrs := map[string]types.MessageAttributeValue{}
	InjectTraceContext(ctx, attrs)
	require.Contains(t, attrs, "traceparent")

	restored := ExtractTraceContext(context.Background(), attrs)
	assert.Equal(t, span.SpanContext().TraceID(), trace.SpanContextFromContext(restored).TraceID())
}
