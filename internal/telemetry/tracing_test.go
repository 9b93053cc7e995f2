package telemetry_test

import (
	"context"
	"testing"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/config"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracer_NoEndpoint(t *testing.T) {
	// Act
	shutdown, err := telemetry.InitTracer(context.Background(), config.OtelConfig{ServiceName: "test"})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	_, isSDK := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.False(t, isSDK, "no exporter should leave the no-op provider installed")
}

func TestNewTracerProvider(t *testing.T) {
	t.Run("Records spans with the service name", func(t *testing.T) {
		// Arrange
		recorder := tracetest.NewSpanRecorder()
		provider := telemetry.NewTracerProvider(
			config.OtelConfig{ServiceName: "ecommerce-test", SamplerRatio: 1},
			sdktrace.WithSpanProcessor(recorder),
		)
		defer provider.Shutdown(context.Background())

		// Act
		_, span := provider.Tracer("test").Start(context.Background(), "op")
		span.End()

		// Assert
		spans := recorder.Ended()
		require.Len(t, spans, 1)
		assert.Equal(t, "op", spans[0].Name())

		var service string
		for _, kv := range spans[0].Resource().Attributes() {
			if kv.Key == "service.name" {
				service = kv.Value.AsString()
			}
		}
		assert.Equal(t, "ecommerce-test", service)
	})

	t.Run("Zero ratio drops root spans", func(t *testing.T) {
		// Arrange
		recorder := tracetest.NewSpanRecorder()
		provider := telemetry.NewTracerProvider(
			config.OtelConfig{ServiceName: "ecommerce-test", SamplerRatio: 0},
			sdktrace.WithSpanProcessor(recorder),
		)
		defer provider.Shutdown(context.Background())

		// Act
		_, span := provider.Tracer("test").Start(context.Background(), "op")
		span.End()

		// Assert
		assert.Empty(t, recorder.Ended())
	})
}
