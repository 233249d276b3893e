package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/samirrijal/chargemap/internal/pkg/telemetry"
)

func TestResource_CarriesServiceName(t *testing.T) {
	res := telemetry.Resource("chargemap-api")

	var found bool
	for _, kv := range res.Attributes() {
		if kv.Key == "service.name" {
			found = true
			assert.Equal(t, "chargemap-api", kv.Value.AsString())
		}
	}
	assert.True(t, found)
}

func TestInitTracer_InstallsProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	// The gRPC exporter connects lazily, so no collector is needed here.
	shutdown, err := telemetry.InitTracer(context.Background(), "chargemap-test", "localhost:4317")
	require.NoError(t, err)
	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestAttributes_RecordedOnSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.SetAttributes(telemetry.AttrSiteID.String("abc"), telemetry.AttrRegionRadius.Float64(0.11))
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Len(t, spans[0].Attributes(), 2)
}
